package metadata

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
)

func TestCloneIsIndependent(t *testing.T) {
	original := New(KeyCorrelationID, "abc")
	cloned := original.Clone()
	cloned["extra"] = "1"

	if _, ok := original["extra"]; ok {
		t.Fatal("mutating the clone leaked into the original")
	}
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	original := New("a", "1")
	derived := original.With("b", "2")

	if original["b"] != "" {
		t.Fatal("With mutated the receiver")
	}
	if derived["a"] != "1" || derived["b"] != "2" {
		t.Fatalf("unexpected derived map: %#v", derived)
	}
}

func TestWithAll(t *testing.T) {
	base := New("a", "1")
	merged := base.WithAll(Metadata{"b": "2", "c": "3"})

	if len(merged) != 3 {
		t.Fatalf("expected 3 entries, got %#v", merged)
	}
	if len(base) != 1 {
		t.Fatal("WithAll mutated the receiver")
	}
}

func TestNewOddPairsDropsTrailingKey(t *testing.T) {
	md := New("a", "1", "dangling")
	if len(md) != 1 || md["a"] != "1" {
		t.Fatalf("unexpected map: %#v", md)
	}
}

func TestWatermillConversions(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		md := New(KeyDiscriminator, "gopher", KeyRequestID, "01J")
		back := FromWatermill(ToWatermill(md))
		if len(back) != 2 || back[KeyDiscriminator] != "gopher" || back[KeyRequestID] != "01J" {
			t.Fatalf("round trip lost data: %#v", back)
		}
	})

	t.Run("empty maps", func(t *testing.T) {
		if got := FromWatermill(message.Metadata{}); got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil metadata, got %#v", got)
		}
		if got := ToWatermill(Metadata{}); got == nil || len(got) != 0 {
			t.Fatalf("expected empty non-nil watermill metadata, got %#v", got)
		}
	})
}
