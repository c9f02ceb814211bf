package normalize

// Records normalizes a raw records array, skipping non-object entries.
func Records(raw []interface{}) []TitleRecord {
	out := make([]TitleRecord, 0, len(raw))
	for _, item := range raw {
		if m, ok := asObject(item); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// Record resolves every record-level field from its accepted spellings.
func Record(m object) TitleRecord {
	return TitleRecord{
		BRN:                       integer(m, "brn", "BRN"),
		DigitalID:                 str(m, "digitalId", "DigitalId", "DigitalID"),
		OtherTitles:               strs(m, "otherTitles", "OtherTitles"),
		NativeOtherTitles:         strs(m, "nativeOtherTitles", "NativeOtherTitles"),
		VariantTitles:             strs(m, "variantTitles", "VariantTitles"),
		NativeVariantTitles:       strs(m, "nativeVariantTitles", "NativeVariantTitles"),
		OtherAuthors:              strs(m, "otherAuthors", "OtherAuthors"),
		NativeOtherAuthors:        strs(m, "nativeOtherAuthors", "NativeOtherAuthors"),
		ISBNs:                     strs(m, "isbns", "ISBNs", "Isbns", "isbn", "ISBN"),
		ISSNs:                     strs(m, "issns", "ISSNs", "Issns", "issn", "ISSN"),
		Format:                    format(m),
		Edition:                   strs(m, "edition", "Edition"),
		NativeEdition:             strs(m, "nativeEdition", "NativeEdition"),
		Publisher:                 strs(m, "publisher", "Publisher"),
		NativePublisher:           strs(m, "nativePublisher", "NativePublisher"),
		PublishDate:               str(m, "publishDate", "PublishDate", "PublishYear"),
		Subjects:                  strs(m, "subjects", "Subjects"),
		PhysicalDescription:       strs(m, "physicalDescription", "PhysicalDescription"),
		NativePhysicalDescription: strs(m, "nativePhysicalDescription", "NativePhysicalDescription"),
		Summary:                   strs(m, "summary", "Summary"),
		NativeSummary:             strs(m, "nativeSummary", "NativeSummary"),
		Contents:                  strs(m, "contents", "Contents"),
		NativeContents:            strs(m, "nativeContents", "NativeContents"),
		Thesis:                    strs(m, "thesis", "Thesis"),
		NativeThesis:              strs(m, "nativeThesis", "NativeThesis"),
		Notes:                     strs(m, "notes", "Notes"),
		NativeNotes:               strs(m, "nativeNotes", "NativeNotes"),
		AllowReservation:          boolean(m, "allowReservation", "AllowReservation"),
		IsRestricted:              boolean(m, "isRestricted", "IsRestricted"),
		ActiveReservationsCount:   integer(m, "activeReservationsCount", "ActiveReservationsCount", "activeReservations", "ActiveReservations"),
		Audience:                  strs(m, "audience", "Audience"),
		AudienceIMDA:              strs(m, "audienceImda", "AudienceImda", "AudienceIMDA"),
		Language:                  strs(m, "language", "Language"),
		Serial:                    boolean(m, "serial", "Serial"),
		VolumeNote:                strs(m, "volumeNote", "VolumeNote"),
		NativeVolumeNote:          strs(m, "nativeVolumeNote", "NativeVolumeNote"),
		Frequency:                 strs(m, "frequency", "Frequency"),
		NativeFrequency:           strs(m, "nativeFrequency", "NativeFrequency"),
		Credits:                   strs(m, "credits", "Credits"),
		NativeCredits:             strs(m, "nativeCredits", "NativeCredits"),
		Performers:                strs(m, "performers", "Performers"),
		NativePerformers:          strs(m, "nativePerformers", "NativePerformers"),
		Availability:              boolean(m, "availability", "Availability"),
		Source:                    str(m, "source", "Source"),
		Volumes:                   strs(m, "volumes", "Volumes", "volume", "Volume"),
		MaterialType:              str(m, "materialType", "MaterialType"),
	}
}

// format accepts {code,name} in either case or a bare string.
func format(m object) BibFormat {
	v, ok := pick(m, func(v interface{}) (interface{}, bool) { return v, true }, "format", "Format")
	if !ok {
		return BibFormat{}
	}

	switch t := v.(type) {
	case object:
		return BibFormat{
			Code: str(t, "code", "Code"),
			Name: str(t, "name", "Name"),
		}
	case string:
		return BibFormat{Name: t}
	}
	return BibFormat{}
}
