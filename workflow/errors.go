package workflow

import "errors"

var (
	errEntityExtractorNotSet = errors.New("entity extractor not set")
	errDraftGeneratorNotSet  = errors.New("draft generator not set")
	errDraftReviewerNotSet   = errors.New("draft reviewer not set")
)
