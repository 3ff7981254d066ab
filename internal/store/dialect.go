package store

import (
	"fmt"
	"strings"
)

// treeColumns is the insert/upsert column set, in DDL order. id and
// created_at are server-assigned and excluded.
var treeColumns = []string{
	"geom_lon",
	"geom_lat",
	"arbres_idbase",
	"arbres_domanialite",
	"arbres_arrondissement",
	"arbres_complementadresse",
	"arbres_numero",
	"arbres_adresse",
	"arbres_circonferenceencm",
	"arbres_hauteurenm",
	"arbres_stadedeveloppement",
	"arbres_pepiniere",
	"arbres_genre",
	"arbres_espece",
	"arbres_varieteoucultivar",
	"arbres_dateplantation",
	"arbres_libellefrancais",
	"com_idbase",
	"com_idarbre",
	"com_site",
	"com_adresse",
	"com_complement_adresse",
	"com_arrondissement",
	"com_domanialite",
	"com_nom_usuel",
	"com_nom_latin",
	"com_autorite_taxo",
	"com_annee_plantation",
	"com_qualification_rem",
	"com_resume",
	"com_descriptif",
	"com_delib_num",
	"com_delib_date",
	"com_label_arbres",
	"com_url_pdf",
	"com_url_photo1",
	"com_copyright1",
}

// dialect abstracts the SQL differences between the supported drivers.
type dialect struct {
	driver string
	schema []string
	upsert string
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS trees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	geom_lon REAL DEFAULT NULL,
	geom_lat REAL DEFAULT NULL,
	arbres_idbase INTEGER DEFAULT NULL,
	arbres_domanialite TEXT DEFAULT NULL,
	arbres_arrondissement TEXT DEFAULT NULL,
	arbres_complementadresse TEXT DEFAULT NULL,
	arbres_numero TEXT DEFAULT NULL,
	arbres_adresse TEXT DEFAULT NULL,
	arbres_circonferenceencm INTEGER DEFAULT NULL,
	arbres_hauteurenm INTEGER DEFAULT NULL,
	arbres_stadedeveloppement TEXT DEFAULT NULL,
	arbres_pepiniere TEXT DEFAULT NULL,
	arbres_genre TEXT DEFAULT NULL,
	arbres_espece TEXT DEFAULT NULL,
	arbres_varieteoucultivar TEXT DEFAULT NULL,
	arbres_dateplantation TEXT DEFAULT NULL,
	arbres_libellefrancais TEXT DEFAULT NULL,
	com_idbase INTEGER DEFAULT NULL,
	com_idarbre INTEGER DEFAULT NULL,
	com_site TEXT DEFAULT NULL,
	com_adresse TEXT DEFAULT NULL,
	com_complement_adresse TEXT DEFAULT NULL,
	com_arrondissement TEXT DEFAULT NULL,
	com_domanialite TEXT DEFAULT NULL,
	com_nom_usuel TEXT DEFAULT NULL,
	com_nom_latin TEXT DEFAULT NULL,
	com_autorite_taxo TEXT DEFAULT NULL,
	com_annee_plantation TEXT DEFAULT NULL,
	com_qualification_rem TEXT DEFAULT NULL,
	com_resume TEXT,
	com_descriptif TEXT,
	com_delib_num TEXT DEFAULT NULL,
	com_delib_date TEXT DEFAULT NULL,
	com_label_arbres TEXT DEFAULT NULL,
	com_url_pdf TEXT DEFAULT NULL,
	com_url_photo1 TEXT DEFAULT NULL,
	com_copyright1 TEXT DEFAULT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const mysqlSchema = `CREATE TABLE IF NOT EXISTS trees (
	id INT NOT NULL AUTO_INCREMENT,
	geom_lon DECIMAL(10,8) DEFAULT NULL,
	geom_lat DECIMAL(10,8) DEFAULT NULL,
	arbres_idbase INT DEFAULT NULL,
	arbres_domanialite VARCHAR(255) DEFAULT NULL,
	arbres_arrondissement VARCHAR(255) DEFAULT NULL,
	arbres_complementadresse VARCHAR(255) DEFAULT NULL,
	arbres_numero VARCHAR(255) DEFAULT NULL,
	arbres_adresse VARCHAR(255) DEFAULT NULL,
	arbres_circonferenceencm INT DEFAULT NULL,
	arbres_hauteurenm INT DEFAULT NULL,
	arbres_stadedeveloppement VARCHAR(255) DEFAULT NULL,
	arbres_pepiniere VARCHAR(255) DEFAULT NULL,
	arbres_genre VARCHAR(255) DEFAULT NULL,
	arbres_espece VARCHAR(255) DEFAULT NULL,
	arbres_varieteoucultivar VARCHAR(255) DEFAULT NULL,
	arbres_dateplantation DATETIME DEFAULT NULL,
	arbres_libellefrancais VARCHAR(255) DEFAULT NULL,
	com_idbase INT DEFAULT NULL,
	com_idarbre INT DEFAULT NULL,
	com_site VARCHAR(255) DEFAULT NULL,
	com_adresse VARCHAR(255) DEFAULT NULL,
	com_complement_adresse VARCHAR(255) DEFAULT NULL,
	com_arrondissement VARCHAR(255) DEFAULT NULL,
	com_domanialite VARCHAR(255) DEFAULT NULL,
	com_nom_usuel VARCHAR(255) DEFAULT NULL,
	com_nom_latin VARCHAR(255) DEFAULT NULL,
	com_autorite_taxo VARCHAR(255) DEFAULT NULL,
	com_annee_plantation VARCHAR(255) DEFAULT NULL,
	com_qualification_rem VARCHAR(255) DEFAULT NULL,
	com_resume TEXT,
	com_descriptif TEXT,
	com_delib_num VARCHAR(255) DEFAULT NULL,
	com_delib_date VARCHAR(255) DEFAULT NULL,
	com_label_arbres VARCHAR(255) DEFAULT NULL,
	com_url_pdf VARCHAR(255) DEFAULT NULL,
	com_url_photo1 VARCHAR(255) DEFAULT NULL,
	com_copyright1 VARCHAR(255) DEFAULT NULL,
	created_at TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id),
	UNIQUE KEY uniq_trees_source (arbres_idbase)
);`

func sqliteDialect() dialect {
	return dialect{
		driver: "sqlite",
		schema: []string{
			sqliteSchema,
			`CREATE UNIQUE INDEX IF NOT EXISTS uniq_trees_source ON trees(arbres_idbase);`,
		},
		upsert: buildSQLiteUpsert(),
	}
}

func mysqlDialect() dialect {
	return dialect{
		driver: "mysql",
		schema: []string{mysqlSchema},
		upsert: buildMySQLUpsert(),
	}
}

func buildSQLiteUpsert() string {
	var updates []string
	for _, col := range treeColumns {
		if col == "arbres_idbase" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s=excluded.%s", col, col))
	}
	return fmt.Sprintf(
		"INSERT INTO trees (%s) VALUES (%s) ON CONFLICT(arbres_idbase) DO UPDATE SET %s",
		strings.Join(treeColumns, ", "),
		placeholders(len(treeColumns)),
		strings.Join(updates, ", "),
	)
}

func buildMySQLUpsert() string {
	var updates []string
	for _, col := range treeColumns {
		if col == "arbres_idbase" {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s=VALUES(%s)", col, col))
	}
	return fmt.Sprintf(
		"INSERT INTO trees (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		strings.Join(treeColumns, ", "),
		placeholders(len(treeColumns)),
		strings.Join(updates, ", "),
	)
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}
