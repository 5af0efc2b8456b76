package model

// Rule maps a short token to the regex fragment it stands for.
type Rule struct {
	Token    string `json:"token"`
	Fragment string `json:"fragment"`
}

// Template is a guideline row: a token template plus the metadata used for upload records.
type Template struct {
	Extra          map[string]string `json:"extra,omitempty"`
	FL             string            `json:"fl"`
	Regex          string            `json:"regex"`
	CheckRegex     string            `json:"check_regex,omitempty"`
	Source         string            `json:"source"`
	Section        string            `json:"section,omitempty"`
	Part           string            `json:"part,omitempty"`
	Component      string            `json:"component,omitempty"`
	ElementType    string            `json:"element_type,omitempty"`
	ObjectType     string            `json:"object_type,omitempty"`
	CatalogProfile string            `json:"catalog_profile,omitempty"`
	Length         int               `json:"length"`
	Row            int               `json:"row"`
}
