// Package snomed holds the data shapes that flow through the SNOMED CT
// ingestion core: RF2 row types, the resumable checkpoint, and the status/
// verification shapes surfaced over HTTP.
package snomed

// ConceptRow is one row of sct2_Concept_Snapshot*.txt.
type ConceptRow struct {
	ID                 string
	EffectiveTime      string
	Active             bool
	ModuleID           string
	DefinitionStatusID string
}

// DescriptionRow is one row of sct2_Description_Snapshot*.txt.
type DescriptionRow struct {
	ID                 string
	EffectiveTime      string
	Active             bool
	ModuleID           string
	ConceptID          string
	LanguageCode       string
	TypeID             string
	Term               string
	CaseSignificanceID string
}

// RelationshipRow is one row of sct2_Relationship_Snapshot*.txt.
type RelationshipRow struct {
	ID                    string
	EffectiveTime         string
	Active                bool
	ModuleID              string
	SourceID              string
	DestinationID         string
	RelationshipGroup     int
	TypeID                string
	CharacteristicTypeID  string
	ModifierID            string
}

// LanguageRefsetRow is one row of der2_cRefset_LanguageSnapshot*.txt.
type LanguageRefsetRow struct {
	ID                     string
	EffectiveTime          string
	Active                 bool
	ModuleID               string
	RefsetID               string
	ReferencedComponentID  string
	AcceptabilityID        string
}

// Well-known SCTIDs the pipeline branches on.
const (
	TypeIDFSN       = "900000000000003001"
	TypeIDSynonym   = "900000000000013009"
	TypeIDIsA       = "116680003"
	Inferred        = "900000000000011006"
	Preferred       = "900000000000548007"
	USDialectRefset = "900000000000509007"

	RootConcept            = "138875005"
	ClinicalFindingConcept = "404684003"
)

// Graph entity labels/edges the pipeline produces.
const (
	VertexLabelConcept = "SnomedConcept"
	EdgeLabelIsA       = "IS_A"
	EdgeLabelDefining   = "DEFINING_REL"
)
