package main

import (
	"fmt"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSetTraceLevel(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, traceKeys...)
	defer teardown()

	tests := []struct {
		level string
		err   bool
	}{
		{level: "error"},
		{level: "info"},
		{level: "DEBUG"},
		{level: "verbose", err: true},
		{level: "", err: true},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.level), func(t *testing.T) {
			err := setTraceLevel(tt.level)
			if tt.err {
				if err == nil {
					t.Fatal("an error must occur")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
