package normalize

// TitlesResult is the canonical form of a title search or listing response.
type TitlesResult struct {
	TotalRecords      *int64         `json:"totalRecords,omitempty"`
	Count             *int64         `json:"count,omitempty"`
	HasMoreRecords    *bool          `json:"hasMoreRecords,omitempty"`
	NextRecordsOffset *int64         `json:"nextRecordsOffset,omitempty"`
	SetID             *int64         `json:"setId,omitempty"`
	Titles            []TitleSummary `json:"titles"`
	Facets            []Facet        `json:"facets"`
}

// TitleSummary groups the bibliographic records of one work.
type TitleSummary struct {
	Title             string        `json:"title,omitempty"`
	NativeTitle       string        `json:"nativeTitle,omitempty"`
	SeriesTitle       []string      `json:"seriesTitle,omitempty"`
	NativeSeriesTitle []string      `json:"nativeSeriesTitle,omitempty"`
	Author            string        `json:"author,omitempty"`
	NativeAuthor      string        `json:"nativeAuthor,omitempty"`
	CoverURL          *BookCover    `json:"coverUrl,omitempty"`
	Records           []TitleRecord `json:"records"`
}

// BookCover holds cover image URLs by size.
type BookCover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// BibFormat is a record's format; it is always emitted, possibly as {}.
type BibFormat struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Label returns the name, falling back to the code.
func (f BibFormat) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Code
}

// TitleRecord is one bibliographic record (an edition or format of a title).
type TitleRecord struct {
	BRN                       *int64    `json:"brn,omitempty"`
	DigitalID                 string    `json:"digitalId,omitempty"`
	OtherTitles               []string  `json:"otherTitles,omitempty"`
	NativeOtherTitles         []string  `json:"nativeOtherTitles,omitempty"`
	VariantTitles             []string  `json:"variantTitles,omitempty"`
	NativeVariantTitles       []string  `json:"nativeVariantTitles,omitempty"`
	OtherAuthors              []string  `json:"otherAuthors,omitempty"`
	NativeOtherAuthors        []string  `json:"nativeOtherAuthors,omitempty"`
	ISBNs                     []string  `json:"isbns,omitempty"`
	ISSNs                     []string  `json:"issns,omitempty"`
	Format                    BibFormat `json:"format"`
	Edition                   []string  `json:"edition,omitempty"`
	NativeEdition             []string  `json:"nativeEdition,omitempty"`
	Publisher                 []string  `json:"publisher,omitempty"`
	NativePublisher           []string  `json:"nativePublisher,omitempty"`
	PublishDate               string    `json:"publishDate,omitempty"`
	Subjects                  []string  `json:"subjects,omitempty"`
	PhysicalDescription       []string  `json:"physicalDescription,omitempty"`
	NativePhysicalDescription []string  `json:"nativePhysicalDescription,omitempty"`
	Summary                   []string  `json:"summary,omitempty"`
	NativeSummary             []string  `json:"nativeSummary,omitempty"`
	Contents                  []string  `json:"contents,omitempty"`
	NativeContents            []string  `json:"nativeContents,omitempty"`
	Thesis                    []string  `json:"thesis,omitempty"`
	NativeThesis              []string  `json:"nativeThesis,omitempty"`
	Notes                     []string  `json:"notes,omitempty"`
	NativeNotes               []string  `json:"nativeNotes,omitempty"`
	AllowReservation          *bool     `json:"allowReservation,omitempty"`
	IsRestricted              *bool     `json:"isRestricted,omitempty"`
	ActiveReservationsCount   *int64    `json:"activeReservationsCount,omitempty"`
	Audience                  []string  `json:"audience,omitempty"`
	AudienceIMDA              []string  `json:"audienceImda,omitempty"`
	Language                  []string  `json:"language,omitempty"`
	Serial                    *bool     `json:"serial,omitempty"`
	VolumeNote                []string  `json:"volumeNote,omitempty"`
	NativeVolumeNote          []string  `json:"nativeVolumeNote,omitempty"`
	Frequency                 []string  `json:"frequency,omitempty"`
	NativeFrequency           []string  `json:"nativeFrequency,omitempty"`
	Credits                   []string  `json:"credits,omitempty"`
	NativeCredits             []string  `json:"nativeCredits,omitempty"`
	Performers                []string  `json:"performers,omitempty"`
	NativePerformers          []string  `json:"nativePerformers,omitempty"`
	Availability              *bool     `json:"availability,omitempty"`
	Source                    string    `json:"source,omitempty"`
	Volumes                   []string  `json:"volumes,omitempty"`
	MaterialType              string    `json:"materialType,omitempty"`
}

// Availability is one physical item's status at a branch.
type Availability struct {
	Branch     string `json:"branch"`
	CallNumber string `json:"callNumber,omitempty"`
	Status     string `json:"status,omitempty"`
	Available  *int64 `json:"available,omitempty"`
	Total      *int64 `json:"total,omitempty"`
}

// Facet is a search refinement dimension.
type Facet struct {
	ID     string      `json:"id,omitempty"`
	Name   string      `json:"name,omitempty"`
	Values []FacetData `json:"values"`
}

// FacetData is one value of a facet with its hit count.
type FacetData struct {
	ID    string `json:"id,omitempty"`
	Data  string `json:"data,omitempty"`
	Count *int64 `json:"count,omitempty"`
}
