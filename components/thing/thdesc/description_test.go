package thdesc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/storage/stcore"
)

type testDescriptionFetcher struct {
	data []byte
	err  error
	urls []string
}

func (f *testDescriptionFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)

	return f.data, f.err
}

type testDescriptionDB struct {
	stcore.NoopDB
	blobs map[string]stcore.Blob
}

func newTestDescriptionDB() *testDescriptionDB {
	return &testDescriptionDB{blobs: make(map[string]stcore.Blob)}
}

func (d *testDescriptionDB) Read(key string) (stcore.Blob, error) {
	blob, ok := d.blobs[key]
	if !ok {
		return stcore.Blob{}, status.StatusNoData
	}

	return blob, nil
}

func (d *testDescriptionDB) Write(key string, blob stcore.Blob) error {
	d.blobs[key] = blob

	return nil
}

func TestDescriptionFromFileJSON(t *testing.T) {
	desc, err := FromFile(filepath.Join("testdata", "led.json"))
	require.NoError(t, err)

	require.Equal(t, "led", desc.Metadata.Name)
	require.Equal(t, StringList{"JSON"}, desc.Metadata.Encodings)

	require.Len(t, desc.Properties(), 2)
	require.Len(t, desc.Actions(), 1)
	require.Len(t, desc.Events(), 1)

	red := desc.Properties()[0]
	require.Equal(t, "red", red.Name)
	require.True(t, red.Writable)
	require.Equal(t, "xsd:unsignedByte", red.OutputType)

	protocols := desc.Protocols()
	require.Len(t, protocols, 2)
	require.Equal(t, "CoAP", protocols[0].Name)
	require.Equal(t, 1, protocols[0].Priority)
	require.Equal(t, "HTTP", protocols[1].Name)
}

func TestDescriptionFromFileYAML(t *testing.T) {
	desc, err := FromFile(filepath.Join("testdata", "led.yaml"))
	require.NoError(t, err)

	require.Equal(t, "led", desc.Metadata.Name)
	require.Equal(t, StringList{"JSON"}, desc.Metadata.Encodings)

	require.Len(t, desc.Properties(), 1)
	require.Equal(t, "brightness", desc.Properties()[0].Name)

	require.Len(t, desc.Actions(), 1)
	require.Equal(t, "ledOnOff", desc.Actions()[0].Name)
	require.Equal(t, "xsd:boolean", desc.Actions()[0].InputType)
}

func TestDescriptionFromBytesMalformed(t *testing.T) {
	for _, data := range []string{
		`{"metadata": {"name": "led"}`,
		`{"metadata": {"name": ""}}`,
		`{"metadata": {"name": "led"}, "interactions": [{"kind": "property"}]}`,
		`{"metadata": {"name": "led", "encodings": 5}}`,
	} {
		_, err := FromBytes([]byte(data))
		require.ErrorIs(t, err, status.StatusParse, data)
	}
}

func TestDescriptionFromFileMissing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missed.json"))
	require.Error(t, err)
}

func TestDescriptionParseKind(t *testing.T) {
	require.Equal(t, KindProperty, ParseKind("Property"))
	require.Equal(t, KindProperty, ParseKind("td:Property"))
	require.Equal(t, KindAction, ParseKind("action"))
	require.Equal(t, KindEvent, ParseKind("Event"))
	require.Equal(t, KindUnknown, ParseKind("Thing"))
}

func TestDescriptionFromURL(t *testing.T) {
	fetcher := &testDescriptionFetcher{
		data: []byte(`{"metadata": {"name": "led"}}`),
	}

	desc, err := FromURL(context.Background(), fetcher, "http://localhost/things/led")
	require.NoError(t, err)
	require.Equal(t, "led", desc.Metadata.Name)
	require.Equal(t, []string{"http://localhost/things/led"}, fetcher.urls)

	fetcher.err = status.StatusTransport

	_, err = FromURL(context.Background(), fetcher, "http://localhost/things/led")
	require.ErrorIs(t, err, status.StatusTransport)
}

func TestDescriptionMarshal(t *testing.T) {
	desc := &Description{
		Metadata: Metadata{
			Name: "led",
			Protocols: map[string]Protocol{
				"HTTP": {URI: "http://localhost/things/led", Priority: 1},
			},
		},
		Interactions: []Interaction{
			{Kind: KindProperty, Name: "red", OutputType: "xsd:unsignedByte", Writable: true},
		},
	}

	data, err := Marshal(desc)
	require.NoError(t, err)

	parsed, err := FromBytes(data)
	require.NoError(t, err)
	require.Equal(t, desc, parsed)
}

func TestCachingLoaderFallback(t *testing.T) {
	const url = "http://localhost/things/led"

	fetcher := &testDescriptionFetcher{
		data: []byte(`{"metadata": {"name": "led"}}`),
	}
	db := newTestDescriptionDB()

	loader := NewCachingLoader(fetcher, db)

	desc, err := loader.Load(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "led", desc.Metadata.Name)
	require.Contains(t, db.blobs, url)

	fetcher.err = errors.New("connection refused")

	desc, err = loader.Load(context.Background(), url)
	require.NoError(t, err)
	require.Equal(t, "led", desc.Metadata.Name)

	_, err = loader.Load(context.Background(), "http://localhost/things/other")
	require.ErrorIs(t, err, fetcher.err)
}

func TestCachingLoaderSkipsMalformed(t *testing.T) {
	fetcher := &testDescriptionFetcher{data: []byte(`{`)}
	db := newTestDescriptionDB()

	_, err := NewCachingLoader(fetcher, db).Load(context.Background(), "coap://led")
	require.ErrorIs(t, err, status.StatusParse)
	require.Empty(t, db.blobs)
}
