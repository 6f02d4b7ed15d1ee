package snomed

// SnomedSeedStatus is the GET /api/snomed/job shape: a point-in-time view
// derived from either the live in-memory checkpoint or the on-disk one.
type SnomedSeedStatus struct {
	JobID                 string `json:"jobId"`
	Phase                 Phase  `json:"phase"`
	Rf2Directory          string `json:"rf2Directory"`
	LastProcessedLine     int    `json:"lastProcessedLine"`
	ConceptsSeeded        int    `json:"conceptsSeeded"`
	DescriptionsProcessed int    `json:"descriptionsProcessed"`
	RelationshipsSeeded   int    `json:"relationshipsSeeded"`
	ErrorMessage          string `json:"errorMessage,omitempty"`
	IsRunning             bool   `json:"isRunning"`
	IsPaused              bool   `json:"isPaused"`
	IsCompleted           bool   `json:"isCompleted"`
	IsFailed              bool   `json:"isFailed"`
}

// DeriveStatus computes the derived boolean flags from a checkpoint's phase
// and the controller's "active" bit (§4.5).
func DeriveStatus(cp *Checkpoint, active bool) *SnomedSeedStatus {
	if cp == nil {
		return nil
	}
	isRunning := active && (cp.Phase == PhaseConcepts || cp.Phase == PhaseDescriptions ||
		cp.Phase == PhaseRelationships || cp.Phase == PhaseVerification)
	return &SnomedSeedStatus{
		JobID:                 cp.JobID,
		Phase:                 cp.Phase,
		Rf2Directory:          cp.Rf2Directory,
		LastProcessedLine:     cp.LastProcessedLine,
		ConceptsSeeded:        cp.ConceptsSeeded,
		DescriptionsProcessed: cp.DescriptionsProcessed,
		RelationshipsSeeded:   cp.RelationshipsSeeded,
		ErrorMessage:          cp.ErrorMessage,
		IsRunning:             isRunning,
		IsPaused:              cp.Phase == PhasePaused,
		IsCompleted:           cp.Phase == PhaseCompleted,
		IsFailed:              cp.Phase == PhaseFailed,
	}
}

// SnomedSeedVerification is the GET /api/snomed/verify shape (§4.4.4).
type SnomedSeedVerification struct {
	TotalConcepts         int64    `json:"totalConcepts"`
	ActiveConcepts        int64    `json:"activeConcepts"`
	TotalRelationships    int64    `json:"totalRelationships"`
	ActiveRelationships   int64    `json:"activeRelationships"`
	HasRootConcept         bool    `json:"hasRootConcept"`
	HasClinicalFinding     bool    `json:"hasClinicalFinding"`
	Errors                 []string `json:"errors"`
}

// SnomedFullStatusResponse is the GET /api/snomed/status shape: the job
// status plus a best-effort verification snapshot.
type SnomedFullStatusResponse struct {
	Job          *SnomedSeedStatus       `json:"job"`
	Verification *SnomedSeedVerification `json:"verification,omitempty"`
}

// SnomedSeedStartedResponse is returned 202 by /seed, /resume, /reseed.
type SnomedSeedStartedResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}
