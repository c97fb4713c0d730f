package catalog

import (
	_ "embed"
)

// This file handles embedded star-name data for zero-dependency deployment.
// The binary catalog itself is generated using the catalog-gen tool and
// embedded at compile time.
//
// To generate embedded data:
//   go run cmd/catalog-gen/main.go
//
// This will create internal/catalog/data/hipparcos.bin.gz, a compressed
// Hipparcos star catalog, embedded using the go:embed directive below.

// Note: the actual embed directive is commented out until the data file
// exists. Uncomment after running catalog-gen.

// //go:embed data/hipparcos.bin.gz
// var embeddedHipparcosDataFile []byte

// init is where the embedded data is registered with the catalog loader
// at program startup; its body is empty until the data file exists.
func init() {
	// Uncomment when the data file is available:
	// SetEmbeddedData(embeddedHipparcosDataFile)
}

// BrightStarNames maps HIP numbers to common star names.
// InitializeStarNames applies it to a catalog; trackerd calls it after Load.
var BrightStarNames = map[int]string{
	11767:  "Polaris",    // Alpha Ursae Minoris
	677:    "Alpheratz",  // Alpha Andromedae
	746:    "Caph",       // Beta Cassiopeiae
	1067:   "Algenib",    // Gamma Pegasi
	3179:   "Mirach",     // Beta Andromedae
	3419:   "Schedar",    // Alpha Cassiopeiae
	4427:   "Almach",     // Gamma Andromedae
	5447:   "Achird",     // Eta Cassiopeiae
	7588:   "Achernar",   // Alpha Eridani
	8102:   "Hamal",      // Alpha Arietis
	8903:   "Diphda",     // Beta Ceti
	9640:   "Mirfak",     // Alpha Persei
	13847:  "Aldebaran",  // Alpha Tauri
	14135:  "Rigel",      // Beta Orionis
	17702:  "Capella",    // Alpha Aurigae
	21421:  "Menkalinan", // Beta Aurigae
	24436:  "Bellatrix",  // Gamma Orionis
	24608:  "Mintaka",    // Delta Orionis
	25336:  "Alnilam",    // Epsilon Orionis
	25930:  "Alnitak",    // Zeta Orionis
	26311:  "Saiph",      // Kappa Orionis
	27989:  "Betelgeuse", // Alpha Orionis
	30438:  "Canopus",    // Alpha Carinae
	32349:  "Sirius",     // Alpha Canis Majoris
	33579:  "Adhara",     // Epsilon Canis Majoris
	34444:  "Wezen",      // Delta Canis Majoris
	36850:  "Castor",     // Alpha Geminorum
	37279:  "Procyon",    // Alpha Canis Minoris
	37826:  "Pollux",     // Beta Geminorum
	45238:  "Alphard",    // Alpha Hydrae
	49669:  "Regulus",    // Alpha Leonis
	54061:  "Dubhe",      // Alpha Ursae Majoris
	54872:  "Merak",      // Beta Ursae Majoris
	57632:  "Denebola",   // Beta Leonis
	58001:  "Phecda",     // Gamma Ursae Majoris
	59774:  "Megrez",     // Delta Ursae Majoris
	62956:  "Alioth",     // Epsilon Ursae Majoris
	65378:  "Mizar",      // Zeta Ursae Majoris
	67301:  "Alkaid",     // Eta Ursae Majoris
	68702:  "Spica",      // Alpha Virginis
	69673:  "Arcturus",   // Alpha Bootis
	71681:  "Proxima",    // Alpha Centauri C (closest star)
	71683:  "Rigil Kent", // Alpha Centauri A
	72622:  "Hadar",      // Beta Centauri
	80763:  "Antares",    // Alpha Scorpii
	85927:  "Rasalhague", // Alpha Ophiuchi
	86032:  "Shaula",     // Lambda Scorpii
	91262:  "Vega",       // Alpha Lyrae
	95947:  "Albireo",    // Beta Cygni
	97649:  "Altair",     // Alpha Aquilae
	102098: "Deneb",      // Alpha Cygni
	107315: "Fomalhaut",  // Alpha Piscis Austrini
	109268: "Enif",       // Epsilon Pegasi
	113368: "Markab",     // Alpha Pegasi
	113881: "Scheat",     // Beta Pegasi
}

// InitializeStarNames adds common names to a loaded Hipparcos catalog
func InitializeStarNames(catalog *HipparcosCatalog) {
	for hip, name := range BrightStarNames {
		catalog.AddStarName(name, hip)
	}
}

