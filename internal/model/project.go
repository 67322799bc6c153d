package model

import "time"

// Package model contains the domain types for architectural project records
// and their attached files. Pure value types with no persistence coupling so
// they can travel across HTTP, service, and storage layers.

// ProjectFile is one stored document attached to a project.
// StoragePath is durable; URL is minted per read with a bounded validity
// window and must never be persisted or cached past that window.
type ProjectFile struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Type         string    `json:"type"`
	StoragePath  string    `json:"storage_path,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// File type classifications assigned by the linker from file extensions.
const (
	FileTypeImage   = "image"
	FileTypePDF     = "pdf"
	FileTypeDrawing = "drawing"
	FileTypeUnknown = "unknown"
)

// Project is one architectural project record. The ID is a short code such
// as "A-00001", assigned at import time and never reassigned.
type Project struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Location              string        `json:"location"`
	Address               string        `json:"address"`
	ProjectType           string        `json:"project_type"`
	AreaType              string        `json:"area_type"`
	SiteArea              float64       `json:"site_area"`
	BuildingArea          float64       `json:"building_area"`
	TotalFloorArea        float64       `json:"total_floor_area"`
	BuildingCoverageRatio float64       `json:"building_coverage_ratio"`
	FloorAreaRatio        float64       `json:"floor_area_ratio"`
	StoriesAboveGround    float64       `json:"stories_above_ground"`
	StoriesBelowGround    float64       `json:"stories_below_ground"`
	StructureType         string        `json:"structure_type"`
	InternalFinish        string        `json:"internal_finish,omitempty"`
	ExternalFinish        string        `json:"external_finish,omitempty"`
	Description           string        `json:"description,omitempty"`
	DesignConcepts        []string      `json:"design_concepts"`
	Files                 []ProjectFile `json:"files"`
	DebugInfo             string        `json:"debug_info,omitempty"`
}

// QueryFilters is the per-request discovery input. "all" (or empty) on the
// categorical selectors means unrestricted. SearchTerms are expected to be
// lower-cased by the caller-facing layer.
type QueryFilters struct {
	ProjectType    string
	AreaType       string
	TotalFloorArea string
	SearchTerms    []string
}

// ProjectFromDoc maps a raw schemaless project document onto a Project,
// coercing every numeric field and defaulting every absent text field.
// Document keys are the camelCase names used by the batch importer.
func ProjectFromDoc(id string, data map[string]any) Project {
	return Project{
		ID:                    id,
		Name:                  docString(data, "name", "Untitled Project"),
		Location:              docString(data, "location", "Unknown Location"),
		Address:               docString(data, "address", ""),
		ProjectType:           docString(data, "projectType", "기타"),
		AreaType:              docString(data, "areaType", "기타지역"),
		SiteArea:              CoerceNumber(data["siteArea"]),
		BuildingArea:          CoerceNumber(data["buildingArea"]),
		TotalFloorArea:        CoerceNumber(data["totalFloorArea"]),
		BuildingCoverageRatio: CoerceNumber(data["buildingCoverageRatio"]),
		FloorAreaRatio:        CoerceNumber(data["floorAreaRatio"]),
		StoriesAboveGround:    CoerceNumber(data["storiesAboveGround"]),
		StoriesBelowGround:    CoerceNumber(data["storiesBelowGround"]),
		StructureType:         docString(data, "structureType", "Unknown Structure"),
		InternalFinish:        docString(data, "internalFinish", ""),
		ExternalFinish:        docString(data, "externalFinish", ""),
		Description:           docString(data, "description", ""),
		DesignConcepts:        docStrings(data, "designConcepts"),
		Files:                 []ProjectFile{},
	}
}

func docString(data map[string]any, key, def string) string {
	if s, ok := data[key].(string); ok && s != "" {
		return s
	}
	return def
}

func docStrings(data map[string]any, key string) []string {
	out := []string{}
	raw, ok := data[key].([]any)
	if !ok {
		return out
	}
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Filter vocabularies used by the caller-facing discovery surface.
// They mirror the columns of the imported project sheet.
var (
	ProjectTypes = []string{"단독주택", "공동주택", "근린생활시설", "업무시설", "문화및집회시설", "교육연구시설", "숙박시설", "창고시설", "기타"}

	AreaTypes = []string{"도시지역", "주거지역", "상업지역", "공업지역", "녹지지역", "관리지역", "농림지역", "자연환경보전지역", "기타지역"}

	FloorAreaOptions = []string{
		"1000m² 이하",
		"1001m² ~ 5000m²",
		"5001m² ~ 10000m²",
		"10001m² ~ 50000m²",
		"50001m² 이상",
	}

	// Seed tags; the analysis flow grows a project's set beyond these.
	DesignConceptOptions = []string{"모던", "미니멀리스트", "지속가능한", "바이오필릭", "인더스트리얼", "브루탈리스트", "컨템포러리", "전통적인", "미래지향적", "파라메트릭", "에너지 효율", "친환경", "스마트", "모듈러"}
)
