package svcore

// ThingURL returns the resource path of the thing description.
func ThingURL(thing string) string {
	return "/things/" + thing
}

// PropertyURL returns the resource path of the thing property.
func PropertyURL(thing, property string) string {
	return ThingURL(thing) + "/properties/" + property
}

// ActionURL returns the resource path of the thing action.
func ActionURL(thing, action string) string {
	return ThingURL(thing) + "/actions/" + action
}
