package assets

import (
	"testing"

	"github.com/park285/spycard-go/internal/common/messageprovider"
	"github.com/park285/spycard-go/internal/spycard/messages"
)

func TestMessagesYAML_HasAllKeys(t *testing.T) {
	provider, err := messageprovider.NewFromYAMLAtPath(MessagesYAML, messages.RootKey)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if err := provider.Require(messages.All()...); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultCatalogYAML_NotEmpty(t *testing.T) {
	if len(DefaultCatalogYAML) == 0 {
		t.Fatal("embedded catalog is empty")
	}
}
