package camfov

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservable_OrderAndUnsubscribe(t *testing.T) {
	var o Observable[int]
	var got []string
	unsubA := o.Subscribe(func(v int) { got = append(got, "a") })
	o.Subscribe(func(v int) { got = append(got, "b") })

	o.Publish(1)
	assert.Equal(t, []string{"a", "b"}, got)

	unsubA()
	unsubA()
	o.Publish(2)
	assert.Equal(t, []string{"a", "b", "b"}, got)
	assert.Equal(t, 1, o.Len())
}

func TestObservable_SubscribeDuringPublish(t *testing.T) {
	var o Observable[int]
	calls := 0
	o.Subscribe(func(v int) {
		calls++
		o.Subscribe(func(int) { calls += 10 })
	})
	o.Publish(1)
	assert.Equal(t, 1, calls, "subscribers added during dispatch wait for the next publish")
}

func TestNormalizeRooms(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    []string
	}{
		{"nil", nil, []string{}},
		{"strings", []string{"b", "a", ""}, []string{"a", "b"}},
		{"any list", []any{"a", 3, "c"}, []string{"a", "c"}},
		{"ids object", map[string]any{"ids": []any{"x"}}, []string{"x"}},
		{"object without ids", map[string]any{"other": 1}, []string{}},
		{"set", NewRoomSet("r1", "r2"), []string{"r1", "r2"}},
		{"bool map", map[string]bool{"in": true, "out": false}, []string{"in"}},
		{"sequence", slices.Values([]string{"s1", "s2"}), []string{"s1", "s2"}},
		{"json list", json.RawMessage(`["j1","j2"]`), []string{"j1", "j2"}},
		{"json object", []byte(`{"ids":["j3"]}`), []string{"j3"}},
		{"bad json", []byte(`{`), []string{}},
		{"number", 42, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRooms(tt.payload).IDs())
		})
	}
}
