package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

const (
	ledName = "led"

	ledMaxBrightness = 255
)

var ledColors = []string{"red", "green", "blue"}

// led is an in-memory RGB LED.
type led struct {
	mu         sync.Mutex
	colors     map[string]uint8
	brightness uint8
	on         bool
}

func newLED() *led {
	return &led{colors: make(map[string]uint8)}
}

func (l *led) setColor(color string, v uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.colors[color] = v
}

func (l *led) color(color string) uint8 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.colors[color]
}

func (l *led) setBrightness(v uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.brightness = v
}

func (l *led) getBrightness() uint8 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.brightness
}

func (l *led) setOn(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.on = on
}

func (l *led) isOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.on
}

func newLEDThing() (*thcore.Thing, error) {
	thing, err := thcore.NewThing(ledName)
	if err != nil {
		return nil, err
	}

	for _, name := range append(append([]string(nil), ledColors...), "brightness") {
		prop, err := thcore.NewPropertyBuilder(name).
			Readable(true).
			Writeable(true).
			ValueType("xsd:unsignedByte").
			Build()
		if err != nil {
			return nil, err
		}

		if err := thing.AddProperty(prop); err != nil {
			return nil, err
		}
	}

	for _, b := range []*thcore.ActionBuilder{
		thcore.NewActionBuilder("fadeIn").Param("duration", "xsd:unsignedInt"),
		thcore.NewActionBuilder("fadeOut").Param("duration", "xsd:unsignedInt"),
		thcore.NewActionBuilder("ledOnOff").Param("on", "xsd:boolean"),
	} {
		action, err := b.Build()
		if err != nil {
			return nil, err
		}

		if err := thing.AddAction(action); err != nil {
			return nil, err
		}
	}

	return thing, nil
}

// bindLED connects the servient interactions to the LED.
func bindLED(servient *svcore.Servient, l *led) error {
	for _, color := range ledColors {
		color := color

		if err := servient.OnUpdate(color, func(_ context.Context, value thcore.Content) {
			v, err := parseByte(value)
			if err != nil {
				core.LogWrn.Printf("led: invalid value: color=%s value=%q: %v\n",
					color, value.String(), err)
				return
			}

			core.LogInf.Printf("led: color changed: color=%s value=%d\n", color, v)
			l.setColor(color, v)
		}); err != nil {
			return err
		}
	}

	if err := servient.OnUpdate("brightness", func(_ context.Context, value thcore.Content) {
		v, err := parseByte(value)
		if err != nil {
			core.LogWrn.Printf("led: invalid brightness: value=%q: %v\n", value.String(), err)
			return
		}

		l.setBrightness(v)
	}); err != nil {
		return err
	}

	fade := func(target uint8) svcore.ActionCallback {
		return func(_ context.Context, input thcore.Content) error {
			duration, err := parseDuration(input)
			if err != nil {
				return err
			}

			core.LogInf.Printf("led: fading: brightness=%d->%d duration=%ds\n",
				l.getBrightness(), target, duration)

			l.setBrightness(target)

			return servient.SetPropertyByName("brightness",
				thcore.NewTextContent(strconv.Itoa(int(target))))
		}
	}

	if err := servient.OnInvoke("fadeIn", fade(ledMaxBrightness)); err != nil {
		return err
	}
	if err := servient.OnInvoke("fadeOut", fade(0)); err != nil {
		return err
	}

	return servient.OnInvoke("ledOnOff", func(_ context.Context, input thcore.Content) error {
		on, err := strconv.ParseBool(unquote(input.String()))
		if err != nil {
			return fmt.Errorf("led: invalid switch value=%q: %w", input.String(), status.StatusInvalidArg)
		}

		core.LogInf.Printf("led: switched: on=%t\n", on)
		l.setOn(on)

		return nil
	})
}

func parseByte(c thcore.Content) (uint8, error) {
	v, err := strconv.ParseUint(unquote(c.String()), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("led: invalid byte value=%q: %w", c.String(), status.StatusInvalidArg)
	}

	return uint8(v), nil
}

func parseDuration(c thcore.Content) (uint64, error) {
	s := unquote(c.String())
	if s == "" {
		return 0, nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("led: invalid duration=%q: %w", c.String(), status.StatusInvalidArg)
	}

	return v, nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
