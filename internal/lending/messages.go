// internal/lending/messages.go
package lending

const defaultLocale = "en"

// messages holds the per-locale error texts. The kind is the API contract;
// these strings are free to change per deployment.
var messages = map[string]map[Kind]string{
	"en": {
		KindNotEligible:        "patron is not active",
		KindOutOfStock:         "no copies available",
		KindAlreadyReturned:    "loan already returned",
		KindNotFound:           "record not found",
		KindInvalidArgument:    "invalid argument",
		KindTransactionFailure: "transaction could not complete",
	},
	"id": {
		KindNotEligible:        "pengguna tidak active",
		KindOutOfStock:         "Tidak ada kopi yang tersedia",
		KindAlreadyReturned:    "buku sudah dikembalikan",
		KindNotFound:           "data tidak ditemukan",
		KindInvalidArgument:    "argumen tidak valid",
		KindTransactionFailure: "transaksi tidak dapat diselesaikan",
	},
}

func messageFor(locale string, kind Kind) string {
	if catalog, ok := messages[locale]; ok {
		if msg, ok := catalog[kind]; ok {
			return msg
		}
	}
	return messages[defaultLocale][kind]
}
