package fontpicker

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNextLoading(t *testing.T) {
	tests := []struct {
		name string
		from LoadingStatus
		ev   LoadingEvent
		want LoadingStatus
	}{
		{"init ok", StatusLoading, EventInitSucceeded, StatusFinished},
		{"init fail", StatusLoading, EventInitFailed, StatusError},
		{"set fail", StatusFinished, EventSetActiveFailed, StatusError},
		{"set ok recovers", StatusError, EventSetActiveSucceeded, StatusFinished},
		{"set ok keeps finished", StatusFinished, EventSetActiveSucceeded, StatusFinished},
		{"set fail keeps error", StatusError, EventSetActiveFailed, StatusError},
		{"set while loading ignored", StatusLoading, EventSetActiveSucceeded, StatusLoading},
		{"late init ignored", StatusFinished, EventInitFailed, StatusFinished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NextLoading(tt.from, tt.ev))
		})
	}
}

func TestNextLoading_NeverReturnsToLoading(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		events := rapid.SliceOf(rapid.SampledFrom([]LoadingEvent{
			EventInitSucceeded, EventInitFailed, EventSetActiveSucceeded, EventSetActiveFailed,
		})).Draw(rt, "events")

		s := StatusLoading
		left := false
		for _, ev := range events {
			s = NextLoading(s, ev)
			if s != StatusLoading {
				left = true
			}
			if left && s == StatusLoading {
				rt.Fatalf("returned to loading after %v", ev)
			}
		}
	})
}

func TestNextExpansion(t *testing.T) {
	require.Equal(t, Expanded, NextExpansion(Collapsed, EventToggle))
	require.Equal(t, Collapsed, NextExpansion(Expanded, EventToggle))
	require.Equal(t, Collapsed, NextExpansion(Expanded, EventOutsideActivation))
	require.Equal(t, Collapsed, NextExpansion(Expanded, EventSelection))
	require.Equal(t, Collapsed, NextExpansion(Collapsed, EventOutsideActivation))
	require.Equal(t, Collapsed, NextExpansion(Collapsed, EventSelection))
}

func TestNextExpansion_ToggleParity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(rt, "toggles")
		e := Collapsed
		for range n {
			e = NextExpansion(e, EventToggle)
		}
		want := Collapsed
		if n%2 == 1 {
			want = Expanded
		}
		require.Equal(rt, want, e)
	})
}

func TestStatusStrings(t *testing.T) {
	require.Equal(t, "loading", StatusLoading.String())
	require.Equal(t, "finished", StatusFinished.String())
	require.Equal(t, "error", StatusError.String())
	require.Equal(t, "expanded", Expanded.String())
	require.Equal(t, "collapsed", Collapsed.String())
}
