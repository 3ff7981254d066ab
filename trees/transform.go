package trees

import (
	"time"

	"treesync/opendata"
)

// PlantingDateLayout is the canonical second-precision form stored for
// planting dates.
const PlantingDateLayout = "2006-01-02 15:04:05"

var plantingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Transform maps one raw source document to one normalized Record. It never
// fails: absent or malformed optional fields degrade to null. Every raw
// record yields exactly one Record.
func Transform(raw opendata.RawRecord) Record {
	rec := Record{
		SourceID:          raw.IDBase,
		Domain:            raw.Domain,
		District:          raw.District,
		AddressExtra:      raw.AddressExtra,
		Number:            raw.Number,
		Address:           raw.Address,
		CircumferenceCM:   raw.CircumferenceCM,
		HeightM:           raw.HeightM,
		DevelopmentStage:  raw.DevelopmentStage,
		Nursery:           raw.Nursery,
		Genus:             raw.Genus,
		Species:           raw.Species,
		Variety:           raw.Variety,
		CommonName:        raw.CommonName,
		RemarkableIDBase:  raw.RemarkableIDBase,
		RemarkableTreeID:  raw.RemarkableTreeID,
		Site:              raw.Site,
		RemarkableAddress: raw.RemarkableAddress,
		RemarkableExtra:   raw.RemarkableExtra,
		RemarkableDistr:   raw.RemarkableDistr,
		RemarkableDomain:  raw.RemarkableDomain,
		UsualName:         raw.UsualName,
		LatinName:         raw.LatinName,
		TaxonAuthority:    raw.TaxonAuthority,
		PlantingYear:      raw.PlantingYear,
		Qualification:     raw.Qualification,
		Summary:           raw.Summary,
		Description:       raw.Description,
		DecisionNumber:    raw.DecisionNumber,
		DecisionDate:      raw.DecisionDate,
		Label:             raw.Label,
		PDFURL:            raw.PDFURL,
		PhotoURL:          raw.PhotoURL,
		PhotoCopyright:    raw.PhotoCopyright,
	}
	if raw.Geom != nil {
		rec.Lon = raw.Geom.Lon
		rec.Lat = raw.Geom.Lat
	}
	rec.PlantingDate = normalizePlantingDate(raw.PlantingDate)
	return rec
}

// normalizePlantingDate canonicalizes a date-like string to UTC at second
// precision. Absent or unparsable input yields nil.
func normalizePlantingDate(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range plantingDateLayouts {
		t, err := time.Parse(layout, *raw)
		if err != nil {
			continue
		}
		formatted := t.UTC().Format(PlantingDateLayout)
		return &formatted
	}
	return nil
}
