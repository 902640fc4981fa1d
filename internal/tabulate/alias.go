package tabulate

// FieldAliases maps item-type specific field names onto the canonical field
// they are exported under.
var FieldAliases = map[string]string{
	"bookTitle":            "publicationTitle",
	"thesisType":           "type",
	"university":           "publisher",
	"letterType":           "type",
	"manuscriptType":       "type",
	"interviewMedium":      "medium",
	"distributor":          "publisher",
	"videoRecordingFormat": "medium",
	"genre":                "type",
	"artworkMedium":        "medium",
	"websiteType":          "type",
	"websiteTitle":         "publicationTitle",
	"institution":          "publisher",
	"reportType":           "type",
	"reportNumber":         "number",
	"billNumber":           "number",
	"codeVolume":           "volume",
	"codePages":            "pages",
	"dateDecided":          "date",
	"reporterVolume":       "volume",
	"firstPage":            "pages",
	"caseName":             "title",
	"docketNumber":         "number",
	"documentNumber":       "number",
	"patentNumber":         "number",
	"issueDate":            "date",
	"dateEnacted":          "date",
	"publicLawNumber":      "number",
	"nameOfAct":            "title",
	"subject":              "title",
	"mapType":              "type",
	"blogTitle":            "publicationTitle",
	"postType":             "type",
	"forumTitle":           "publicationTitle",
	"audioRecordingFormat": "medium",
	"label":                "publisher",
	"presentationType":     "type",
	"studio":               "publisher",
	"network":              "publisher",
	"episodeNumber":        "number",
	"programTitle":         "publicationTitle",
	"audioFileType":        "medium",
	"company":              "publisher",
	"proceedingsTitle":     "publicationTitle",
	"encyclopediaTitle":    "publicationTitle",
	"dictionaryTitle":      "publicationTitle",
}

// Alias moves every populated alias field in fields onto its canonical
// name, overwriting whatever the canonical field held. Empty alias fields
// are dropped and leave the canonical field alone. fields is modified in
// place.
func Alias(fields map[string]any) {
	for source, canonical := range FieldAliases {
		value, ok := fields[source]
		if !ok {
			continue
		}
		delete(fields, source)
		if value == nil || value == "" {
			continue
		}
		fields[canonical] = value
	}
}
