// internal/lending/messages_test.go
package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageFor_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, messages["en"][KindOutOfStock], messageFor("fr", KindOutOfStock))
}

func TestMessageFor_KnownLocales(t *testing.T) {
	kinds := []Kind{
		KindNotEligible, KindOutOfStock, KindAlreadyReturned,
		KindNotFound, KindInvalidArgument, KindTransactionFailure,
	}
	for locale := range messages {
		for _, kind := range kinds {
			assert.NotEmpty(t, messageFor(locale, kind), "locale %s kind %s", locale, kind)
		}
	}
}
