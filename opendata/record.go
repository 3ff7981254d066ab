package opendata

// Geometry is the nested coordinate pair as the source emits it.
type Geometry struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

// RawRecord is one source document, received verbatim from the collection
// endpoint. Every field is optional; absent fields decode to nil.
type RawRecord struct {
	IDBase            *int64    `json:"arbres_idbase"`
	Geom              *Geometry `json:"geom_x_y"`
	Domain            *string   `json:"arbres_domanialite"`
	District          *string   `json:"arbres_arrondissement"`
	AddressExtra      *string   `json:"arbres_complementadresse"`
	Number            *string   `json:"arbres_numero"`
	Address           *string   `json:"arbres_adresse"`
	CircumferenceCM   *int64    `json:"arbres_circonferenceencm"`
	HeightM           *int64    `json:"arbres_hauteurenm"`
	DevelopmentStage  *string   `json:"arbres_stadedeveloppement"`
	Nursery           *string   `json:"arbres_pepiniere"`
	Genus             *string   `json:"arbres_genre"`
	Species           *string   `json:"arbres_espece"`
	Variety           *string   `json:"arbres_varieteoucultivar"`
	PlantingDate      *string   `json:"arbres_dateplantation"`
	CommonName        *string   `json:"arbres_libellefrancais"`
	RemarkableIDBase  *int64    `json:"com_idbase"`
	RemarkableTreeID  *int64    `json:"com_idarbre"`
	Site              *string   `json:"com_site"`
	RemarkableAddress *string   `json:"com_adresse"`
	RemarkableExtra   *string   `json:"com_complement_adresse"`
	RemarkableDistr   *string   `json:"com_arrondissement"`
	RemarkableDomain  *string   `json:"com_domanialite"`
	UsualName         *string   `json:"com_nom_usuel"`
	LatinName         *string   `json:"com_nom_latin"`
	TaxonAuthority    *string   `json:"com_autorite_taxo"`
	PlantingYear      *string   `json:"com_annee_plantation"`
	Qualification     *string   `json:"com_qualification_rem"`
	Summary           *string   `json:"com_resume"`
	Description       *string   `json:"com_descriptif"`
	DecisionNumber    *string   `json:"com_delib_num"`
	DecisionDate      *string   `json:"com_delib_date"`
	Label             *string   `json:"com_label_arbres"`
	PDFURL            *string   `json:"com_url_pdf"`
	PhotoURL          *string   `json:"com_url_photo1"`
	PhotoCopyright    *string   `json:"com_copyright1"`
}

// pageResponse is the paginated envelope around RawRecords.
type pageResponse struct {
	TotalCount int         `json:"total_count"`
	Results    []RawRecord `json:"results"`
}
