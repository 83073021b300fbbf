package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	if UUID("a") != UUID(" a ") {
		t.Fatal("expected surrounding whitespace to be ignored")
	}
	if UUID("a") == UUID("b") {
		t.Fatal("expected distinct keys to yield distinct ids")
	}
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for blank key")
	}
}

func TestEntityIDsAreNamespaced(t *testing.T) {
	if PageUUID("about", "") == PageUUID("about", "fr") {
		t.Fatal("expected locale variants to differ")
	}
	if PageUUID("about", "FR") != PageUUID("about", "fr") {
		t.Fatal("expected locale to be case-insensitive")
	}
	if LocaleUUID("en") == MediaUUID("en") {
		t.Fatal("expected entity namespaces to differ")
	}
	if LocaleUUID("EN") != LocaleUUID("en") {
		t.Fatal("expected locale codes to be case-insensitive")
	}
}
