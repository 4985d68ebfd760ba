package model

// Theater represents a physical venue containing one or more screens.
// Theaters are static reference data owned by the catalog; the
// reservation engine only reads them for display context.
//
// Fields:
//  ID      - primary key identifier.
//  Name    - venue name.
//  City    - city the venue is located in.
//  Address - optional street address.
type Theater struct {
    ID      uint64  // theaters.id
    Name    string  // theaters.name
    City    string  // theaters.city
    Address *string // theaters.address (nullable)
}
