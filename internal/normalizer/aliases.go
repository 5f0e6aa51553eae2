package normalizer

// Logical fields are resolved against an ordered alias list: the first alias
// present in the header with a non-empty cell wins. Aliases are matched
// case-insensitively on trimmed header names.

const (
	fieldID         = "id"
	fieldLat        = "lat"
	fieldLng        = "lng"
	fieldName       = "name"
	fieldDeveloper  = "developer"
	fieldAreaCode   = "area_code"
	fieldType       = "type"
	fieldUsableArea = "usable_area"
	fieldLandArea   = "land_area"
	fieldTotalUnits = "total_units"
	fieldSoldUnits  = "sold_units"
	fieldPrice      = "price"
	fieldLaunch     = "launch"
	fieldSpeed      = "speed"
	fieldSpeed6M    = "speed_6m"
)

var fieldAliases = map[string][]string{
	fieldID:         {"project id", "project_id", "projectid", "id"},
	fieldLat:        {"lat", "latitude"},
	fieldLng:        {"lng", "long", "lon", "longitude"},
	fieldName:       {"project name", "project_name", "project", "name"},
	fieldDeveloper:  {"developer", "developer name", "company", "brand"},
	fieldAreaCode:   {"area code", "area_code", "zone code", "zone", "area"},
	fieldType:       {"type", "product type", "property type", "unit type"},
	fieldUsableArea: {"usable area", "usable_area", "floor area", "unit area"},
	fieldLandArea:   {"land area", "land_area", "plot area"},
	fieldTotalUnits: {"total units", "total_units", "units", "total"},
	fieldSoldUnits:  {"sold units", "sold_units", "accum sold", "sold"},
	fieldPrice:      {"price", "unit price", "avg price", "selling price"},
	fieldLaunch:     {"launch", "launch date", "launch_date", "launch period"},
	fieldSpeed:      {"sale speed", "sales rate", "current speed", "speed"},
	fieldSpeed6M:    {"6m speed", "sale speed 6m", "avg speed 6m", "l6m speed"},
}
