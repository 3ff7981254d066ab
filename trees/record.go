package trees

// Record is the canonical, storage-shaped representation of one tree.
// Pointer fields map to nullable columns.
type Record struct {
	ID        int64    `json:"id"`
	Lon       *float64 `json:"geom_lon"`
	Lat       *float64 `json:"geom_lat"`
	SourceID  *int64   `json:"arbres_idbase"`
	Domain    *string  `json:"arbres_domanialite"`
	District  *string  `json:"arbres_arrondissement"`

	AddressExtra     *string `json:"arbres_complementadresse"`
	Number           *string `json:"arbres_numero"`
	Address          *string `json:"arbres_adresse"`
	CircumferenceCM  *int64  `json:"arbres_circonferenceencm"`
	HeightM          *int64  `json:"arbres_hauteurenm"`
	DevelopmentStage *string `json:"arbres_stadedeveloppement"`
	Nursery          *string `json:"arbres_pepiniere"`
	Genus            *string `json:"arbres_genre"`
	Species          *string `json:"arbres_espece"`
	Variety          *string `json:"arbres_varieteoucultivar"`
	PlantingDate     *string `json:"arbres_dateplantation"`
	CommonName       *string `json:"arbres_libellefrancais"`

	RemarkableIDBase  *int64  `json:"com_idbase"`
	RemarkableTreeID  *int64  `json:"com_idarbre"`
	Site              *string `json:"com_site"`
	RemarkableAddress *string `json:"com_adresse"`
	RemarkableExtra   *string `json:"com_complement_adresse"`
	RemarkableDistr   *string `json:"com_arrondissement"`
	RemarkableDomain  *string `json:"com_domanialite"`
	UsualName         *string `json:"com_nom_usuel"`
	LatinName         *string `json:"com_nom_latin"`
	TaxonAuthority    *string `json:"com_autorite_taxo"`
	PlantingYear      *string `json:"com_annee_plantation"`
	Qualification     *string `json:"com_qualification_rem"`
	Summary           *string `json:"com_resume"`
	Description       *string `json:"com_descriptif"`
	DecisionNumber    *string `json:"com_delib_num"`
	DecisionDate      *string `json:"com_delib_date"`
	Label             *string `json:"com_label_arbres"`
	PDFURL            *string `json:"com_url_pdf"`
	PhotoURL          *string `json:"com_url_photo1"`
	PhotoCopyright    *string `json:"com_copyright1"`

	CreatedAt *string `json:"created_at,omitempty"`
}
