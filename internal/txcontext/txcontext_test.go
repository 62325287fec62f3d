package txcontext

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tc := New("sync")

	assert.NotEqual(t, "", tc.ID().String())
	assert.Equal(t, "sync", tc.Kind())
	assert.Zero(t, tc.Len())
}

func TestContext_PreservesOrder(t *testing.T) {
	tc := New("api")

	tc.NetworkRequest("GET", "https://supplier.test/properties", "")
	tc.NetworkResponse(200, "application/json", `{"ok":true}`)
	tc.Message("parsed 3 properties")

	events := tc.Events()
	require.Len(t, events, 3)
	assert.Equal(t, LabelNetworkRequest, events[0].Label)
	assert.Equal(t, "GET https://supplier.test/properties", events[0].Message)
	assert.Equal(t, LabelNetworkResponse, events[1].Label)
	assert.Equal(t, 200, events[1].Metadata["status"])
	assert.Equal(t, LabelMessage, events[2].Label)
	assert.False(t, events[2].Timestamp.IsZero())
}

func TestContext_NetworkFailureCapturesBacktrace(t *testing.T) {
	tc := New("sync")
	tc.NetworkFailure("dial tcp: connection refused")

	events := tc.Events()
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].Backtrace)
	assert.Contains(t, strings.Join(events[0].Backtrace, "\n"), "TestContext_NetworkFailureCapturesBacktrace")
}

func TestContext_TruncatesLargeBodies(t *testing.T) {
	tc := New("api")
	tc.NetworkResponse(200, "text/xml", strings.Repeat("a", maxBodyLength+10))

	body := tc.Events()[0].Metadata["body"].(string)
	assert.True(t, strings.HasSuffix(body, "...(truncated)"))
}

func TestContext_NilReceiverIsNoop(t *testing.T) {
	var tc *Context

	assert.NotPanics(t, func() {
		tc.Message("ignored")
		tc.NetworkFailure("ignored")
	})
	assert.Nil(t, tc.Events())
	assert.Zero(t, tc.Len())

	out, err := tc.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"events":[]`)
}

func TestContext_JSON(t *testing.T) {
	tc := New("sync")
	tc.Add(LabelSyncStarted, "starting", map[string]any{"supplier": "kigo"})

	out, err := tc.JSON()
	require.NoError(t, err)

	var decoded struct {
		ID     string  `json:"id"`
		Kind   string  `json:"kind"`
		Events []Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, tc.ID().String(), decoded.ID)
	assert.Equal(t, "sync", decoded.Kind)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, "kigo", decoded.Events[0].Metadata["supplier"])
}

func TestWithContext(t *testing.T) {
	tc := New("api")
	ctx := WithContext(context.Background(), tc)

	assert.Same(t, tc, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestContext_ConcurrentAppends(t *testing.T) {
	tc := New("sync")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tc.Message("tick")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tc.Len())
}
