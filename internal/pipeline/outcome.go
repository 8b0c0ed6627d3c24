package pipeline

// Outcome classifies how a request ended. Exactly one outcome is produced
// per request and drives the single terminal reply the user sees.
type Outcome int

const (
	OutcomeInternalError Outcome = iota
	OutcomeEmptyQuery
	OutcomeNotFound
	OutcomeTooLong
	OutcomeTooLarge
	OutcomeExtractionFailed
	OutcomeProcessingFailed
	OutcomeDelivered
	OutcomeDeliveredFromCache
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmptyQuery:
		return "empty_query"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTooLong:
		return "too_long"
	case OutcomeTooLarge:
		return "too_large"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	case OutcomeProcessingFailed:
		return "processing_failed"
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDeliveredFromCache:
		return "delivered_from_cache"
	default:
		return "internal_error"
	}
}

// Delivered reports whether the user received audio.
func (o Outcome) Delivered() bool {
	return o == OutcomeDelivered || o == OutcomeDeliveredFromCache
}
