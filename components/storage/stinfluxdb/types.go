package stinfluxdb

// DBParams provides various configuration options for influxDB.
type DBParams struct {
	// URL - influxDB server URL, e.g. "http://127.0.0.1:8086".
	URL string

	// Org - organization name.
	Org string

	// Token - API token with the write access to the bucket.
	Token string

	// Bucket - bucket to store property values and interactions.
	Bucket string
}
