package stinfluxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/open-control-systems/thingweb/components/core"
	"github.com/open-control-systems/thingweb/components/servient/svcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
)

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Recorder stores property values in influxDB.
//
// Remarks:
//   - Servient interactions are stored in the "interaction" measurement.
//   - Polled values are stored in the "property" measurement.
//
// References:
//   - https://docs.influxdata.com/influxdb/cloud/get-started
//   - https://docs.influxdata.com/influxdb/cloud/api-guide/client-libraries/go/
type Recorder struct {
	ctx    context.Context
	writer pointWriter
	now    func() time.Time
	close  func()
}

// NewRecorder initializes influxDB recorder.
//
// Parameters:
//   - ctx - parent context.
//   - params - various influxDB configuration parameters.
func NewRecorder(ctx context.Context, params DBParams) *Recorder {
	client := influxdb2.NewClient(params.URL, params.Token)

	return newRecorder(ctx, client.WriteAPIBlocking(params.Org, params.Bucket), client.Close)
}

func newRecorder(ctx context.Context, writer pointWriter, closeFn func()) *Recorder {
	return &Recorder{
		ctx:    ctx,
		writer: writer,
		now:    time.Now,
		close:  closeFn,
	}
}

// OnReadProperty stores the value returned to the remote reader.
func (r *Recorder) OnReadProperty(ctx context.Context, i svcore.Interaction) {
	r.recordInteraction(ctx, "read", i)
}

// OnWriteProperty stores the value written by the remote writer.
func (r *Recorder) OnWriteProperty(ctx context.Context, i svcore.Interaction) {
	r.recordInteraction(ctx, "write", i)
}

// HandleData stores the polled property values of thing as a single point.
func (r *Recorder) HandleData(thing string, values map[string]thcore.Content) error {
	if len(values) == 0 {
		return fmt.Errorf("influxdb-recorder: no values: thing=%s: %w", thing, status.StatusNoData)
	}

	fields := make(map[string]interface{}, len(values))
	for name, content := range values {
		fields[name] = fieldValue(content)
	}

	point := influxdb2.NewPoint("property",
		map[string]string{"thing": thing},
		fields,
		r.now())

	if err := r.writer.WritePoint(r.ctx, point); err != nil {
		return fmt.Errorf("influxdb-recorder: failed to write to DB: %w", err)
	}

	return nil
}

// Close stops writing data to the DB.
func (r *Recorder) Close() error {
	if r.close != nil {
		r.close()
	}

	return nil
}

func (r *Recorder) recordInteraction(ctx context.Context, op string, i svcore.Interaction) {
	point := influxdb2.NewPoint("interaction",
		map[string]string{
			"thing":    i.Thing,
			"property": i.Property,
			"op":       op,
		},
		map[string]interface{}{
			"value": fieldValue(i.Content),
			"size":  len(i.Content.Payload),
		},
		r.now())

	if err := r.writer.WritePoint(context.WithoutCancel(ctx), point); err != nil {
		core.LogErr.Printf("influxdb-recorder: failed to write to DB: thing=%s property=%s: %v\n",
			i.Thing, i.Property, err)
	}
}

// fieldValue converts the content to a numeric, boolean or string field value.
func fieldValue(c thcore.Content) interface{} {
	payload := strings.TrimSpace(string(c.Payload))

	if c.Type == thcore.MediaTypeJSON {
		var v interface{}
		if err := json.Unmarshal(c.Payload, &v); err == nil {
			switch v := v.(type) {
			case float64, bool, string:
				return v
			}
		}

		return payload
	}

	if i, err := strconv.ParseInt(payload, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(payload, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(payload); err == nil {
		return b
	}

	return payload
}
