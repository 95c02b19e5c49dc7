// Package domain models search results plotted as categorized map layers.
//
// # Data Source
//
// Results arrive from the host's search pipeline in row-major form: a list of
// column descriptors ("fields", each with a name) and a list of rows whose
// values line up with those columns. Values are whatever the host serialized,
// usually strings, sometimes JSON numbers or null. The service requests at
// most [DefaultRowCap] rows per render (see [FetchParams]).
//
// # Column Resolution
//
// Columns are matched case-insensitively against a fixed, ordered list of
// synonyms per role. The first synonym (in list order) that matches any column
// wins, so "latitude" beats "lat" when both are present:
//
//	latitude:    latitude, lat, Latitude
//	longitude:   longitude, lon, lng, Longitude
//	description: description, desc, Description
//	category:    category, type, Category, Type
//	color:       color, colour, marker_color, Color
//
// Latitude and longitude are required; the rest are optional. Every column not
// claimed by a role is carried through verbatim as an extra field for display.
//
// # Coordinates
//
// Coordinates must parse as finite numbers with latitude in [-90, 90] and
// longitude in [-180, 180]. Rows that fail are dropped and counted; they never
// fail the batch unless every row fails ([ErrNoValidRows]).
//
// # Categories
//
// Free-text categories are lowercased, runs of '_', whitespace or '-' collapse
// to a single '_', and the result is looked up in the catalog's synonym table:
//
//	"Rest Areas" -> rest_areas -> rest_area
//	"truckstop"  -> truckstop  -> truck_stop
//	"State"      -> state      -> state_boundary
//
// Unrecognized values pass through normalized ("Fuel Depot" -> fuel_depot).
// Missing or blank values become [Other]. Normalization is idempotent.
//
// # Catalog
//
// The [Catalog] is immutable static configuration: the nine known layers with
// their labels, default colors and icon names, the category synonym table, and
// the column synonym lists. It is built once ([DefaultCatalog] or a YAML file
// loaded by the config package) and shared by the classifier and the layer
// state store.
package domain
