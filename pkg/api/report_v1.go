// pkg/api/report_v1.go
package api

// ReportV1 is the stable JSON schema for an estimation run.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
//
// Pointer fields distinguish "absent" from a legitimate zero: a section is
// omitted entirely when its stage did not run (e.g. no guessed_* keys when
// estimation started from user-supplied parameters only).
type ReportV1 struct {
	Model string `json:"model"`

	GuessedLogLikelihood *float64 `json:"guessed_loglikelihood,omitempty"`
	GuessedCoverage      *float64 `json:"guessed_coverage,omitempty"`
	GuessedErrorRate     *float64 `json:"guessed_error_rate,omitempty"`
	GuessedQ1            *float64 `json:"guessed_q1,omitempty"`
	GuessedQ2            *float64 `json:"guessed_q2,omitempty"`
	GuessedQ             *float64 `json:"guessed_q,omitempty"`

	EstimatedLogLikelihood *float64 `json:"estimated_loglikelihood,omitempty"`
	EstimatedCoverage      *float64 `json:"estimated_coverage,omitempty"`
	EstimatedErrorRate     *float64 `json:"estimated_error_rate,omitempty"`
	EstimatedQ1            *float64 `json:"estimated_q1,omitempty"`
	EstimatedQ2            *float64 `json:"estimated_q2,omitempty"`
	EstimatedQ             *float64 `json:"estimated_q,omitempty"`

	// Genome size derived from the k-mer histogram; nil when the corrected
	// coverage is zero or non-finite.
	EstimatedGenomeSize *int64 `json:"estimated_genome_size,omitempty"`
	// Genome size derived from total read bases, when a read file was given.
	EstimatedGenomeSizeReads *int64 `json:"estimated_genome_size_r,omitempty"`

	OriginalErrorRate     *float64 `json:"original_error_rate,omitempty"`
	OriginalLogLikelihood *float64 `json:"original_loglikelihood,omitempty"`
}
