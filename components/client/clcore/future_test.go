package clcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/open-control-systems/thingweb/components/binding/bdcore"
	"github.com/open-control-systems/thingweb/components/status"
	"github.com/open-control-systems/thingweb/components/system/syssched"
	"github.com/open-control-systems/thingweb/components/thing/thcore"
	"github.com/open-control-systems/thingweb/components/thing/thdesc"
)

func TestFutureResolveOnce(t *testing.T) {
	future := NewFuture()

	_, ok := future.Result()
	require.False(t, ok)

	require.True(t, future.Resolve(Result{Op: OpGet, Name: "red", Content: thcore.NewTextContent("1")}))
	require.False(t, future.Resolve(Result{Op: OpGet, Name: "red", Err: status.StatusError}))

	r, ok := future.Result()
	require.True(t, ok)
	require.False(t, r.Failed())
	require.Equal(t, "1", r.Content.String())
}

func TestFutureWaitTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewFuture().Wait(ctx)
	require.ErrorIs(t, err, status.StatusTimeout)
}

func TestSubmitRecoversPanic(t *testing.T) {
	pool := syssched.NewWorkerPool("test", 1)
	defer pool.Close()

	r, err := Submit(pool, OpAction, "fadeIn", func() (thcore.Content, error) {
		panic("boom")
	}).Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, OpAction, r.Op)
	require.Equal(t, "fadeIn", r.Name)
	require.ErrorIs(t, r.Err, status.StatusError)
}

func TestSubmitClosedPool(t *testing.T) {
	pool := syssched.NewWorkerPool("test", 1)
	require.NoError(t, pool.Close())

	r, err := Submit(pool, OpGet, "red", func() (thcore.Content, error) {
		return thcore.Content{}, nil
	}).Wait(context.Background())
	require.NoError(t, err)
	require.ErrorIs(t, r.Err, status.StatusClosed)
}

type testCallback struct {
	mu    sync.Mutex
	calls []string
	wg    sync.WaitGroup
}

func (c *testCallback) record(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()

	c.wg.Done()
}

func (c *testCallback) OnGet(name string, _ thcore.Content) { c.record("get:" + name) }
func (c *testCallback) OnGetError(name string, _ error) { c.record("get-error:" + name) }
func (c *testCallback) OnPut(name string, _ thcore.Content) { c.record("put:" + name) }
func (c *testCallback) OnPutError(name string, _ error) { c.record("put-error:" + name) }
func (c *testCallback) OnAction(name string, _ thcore.Content) {
	c.record("action:" + name)
}
func (c *testCallback) OnActionError(name string, _ error) { c.record("action-error:" + name) }
func (c *testCallback) OnObserve(name string, _ thcore.Content) {
	c.record("observe:" + name)
}
func (c *testCallback) OnObserveError(name string, _ error) { c.record("observe-error:" + name) }

func TestNotifyInvokesExactlyOneHook(t *testing.T) {
	cb := &testCallback{}
	cb.wg.Add(8)

	for _, op := range []Op{OpGet, OpPut, OpAction, OpObserve} {
		Notify(Resolved(Result{Op: op, Name: "x"}), cb)
		Notify(Resolved(Result{Op: op, Name: "x", Err: errors.New("failed")}), cb)
	}

	cb.wg.Wait()

	require.ElementsMatch(t, []string{
		"get:x", "get-error:x",
		"put:x", "put-error:x",
		"action:x", "action-error:x",
		"observe:x", "observe-error:x",
	}, cb.calls)
}

func TestInteractions(t *testing.T) {
	desc, err := thdesc.FromBytes([]byte(`{
		"metadata": {"name": "led"},
		"interactions": [
			{"@type": "Property", "name": "red"},
			{"@type": "Action", "name": "fadeIn"}
		]
	}`))
	require.NoError(t, err)

	in := NewInteractions("http://127.0.0.1:8080/things/led/", desc)

	url, err := in.PropertyURL("red")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080/things/led/properties/red", url)

	url, err = in.ActionURL("fadeIn")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080/things/led/actions/fadeIn", url)

	_, err = in.PropertyURL("fadeIn")
	require.ErrorIs(t, err, status.StatusNotFound)

	_, err = in.ActionURL("red")
	require.ErrorIs(t, err, status.StatusNotFound)
}

func TestErrorFromCode(t *testing.T) {
	require.NoError(t, ErrorFromCode(bdcore.CodeOK, ""))
	require.NoError(t, ErrorFromCode(bdcore.CodeChanged, ""))
	require.ErrorIs(t, ErrorFromCode(bdcore.CodeUnauthorized, "token expired"),
		status.StatusTokenExpired)
	require.ErrorIs(t, ErrorFromCode(bdcore.CodeUnauthorized, "unauthorized"),
		status.StatusUnauthorized)
	require.ErrorIs(t, ErrorFromCode(bdcore.CodeMethodNotAllowed, ""), status.StatusNotSupported)
	require.ErrorIs(t, ErrorFromCode(bdcore.CodeNotFound, ""), status.StatusNotFound)
	require.ErrorIs(t, ErrorFromCode(bdcore.CodeInternalError, ""), status.StatusError)
}
