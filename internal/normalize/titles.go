// Package normalize maps raw catalogue API payloads, in any of the shapes the
// upstream has used (legacy PascalCase under "Result", v2 camelCase at the top
// level), onto one canonical representation. All functions are pure: the same
// input always yields the same output, order is preserved, and malformed
// input degrades to fewer fields rather than an error.
package normalize

// Titles normalizes a SearchTitles or GetTitles response.
func Titles(raw interface{}) TitlesResult {
	out := TitlesResult{
		Titles: []TitleSummary{},
		Facets: []Facet{},
	}

	root, ok := asObject(raw)
	if !ok {
		return out
	}
	result, _ := asObject(root["Result"])

	if n, ok := pickFrom(asInt, place{result, "TotalRecords"}, place{result, "totalRecords"}, place{root, "totalRecords"}, place{root, "TotalRecords"}); ok {
		out.TotalRecords = &n
	}
	if n, ok := pickFrom(asInt, place{result, "Count"}, place{result, "count"}, place{root, "count"}, place{root, "Count"}); ok {
		out.Count = &n
	}
	if b, ok := pickFrom(asBool, place{result, "HasMoreRecords"}, place{result, "hasMoreRecords"}, place{root, "hasMoreRecords"}, place{root, "HasMoreRecords"}); ok {
		out.HasMoreRecords = &b
	}
	if n, ok := pickFrom(asInt, place{result, "NextRecordsOffset"}, place{result, "nextRecordsOffset"}, place{root, "nextRecordsOffset"}, place{root, "NextRecordsOffset"}); ok {
		out.NextRecordsOffset = &n
	}
	if n, ok := pickFrom(asInt, place{result, "SetId"}, place{result, "setId"}, place{root, "setId"}, place{root, "SetId"}); ok {
		out.SetID = &n
	}

	for _, item := range lookupList(root, "$.Result.Titles", "$.titles", "$.Titles") {
		if m, ok := asObject(item); ok {
			out.Titles = append(out.Titles, title(m))
		}
	}

	out.Facets = Facets(lookupList(root, "$.facets", "$.Facets", "$.Result.Facets", "$.Result.facets"))
	return out
}

func title(m object) TitleSummary {
	t := TitleSummary{
		Title:             str(m, "title", "TitleName", "Title"),
		NativeTitle:       str(m, "nativeTitle", "NativeTitle"),
		SeriesTitle:       strs(m, "seriesTitle", "SeriesTitle"),
		NativeSeriesTitle: strs(m, "nativeSeriesTitle", "NativeSeriesTitle"),
		Author:            str(m, "author", "AuthorName", "Author"),
		NativeAuthor:      str(m, "nativeAuthor", "NativeAuthor"),
		CoverURL:          cover(m, "coverUrl", "CoverUrl", "CoverURL"),
		Records:           []TitleRecord{},
	}

	if records, ok := pick(m, asList, "records", "Records"); ok {
		t.Records = Records(records)
	} else if isFlatRecord(m) {
		// Legacy titles carry the record fields inline
		t.Records = append(t.Records, Record(m))
	}
	return t
}

// isFlatRecord reports whether a title item itself holds a record identifier
// that Record can carry over.
func isFlatRecord(m object) bool {
	return integer(m, "brn", "BRN") != nil ||
		str(m, "digitalId", "DigitalId", "DigitalID") != "" ||
		strs(m, "isbns", "ISBNs", "Isbns", "isbn", "ISBN") != nil
}

func cover(m object, keys ...string) *BookCover {
	v, ok := pick(m, func(v interface{}) (interface{}, bool) { return v, true }, keys...)
	if !ok {
		return nil
	}

	var c BookCover
	switch t := v.(type) {
	case object:
		c = BookCover{
			Small:  str(t, "small", "Small"),
			Medium: str(t, "medium", "Medium"),
			Large:  str(t, "large", "Large"),
		}
	case string:
		c = BookCover{Medium: t}
	}
	if c == (BookCover{}) {
		return nil
	}
	return &c
}
