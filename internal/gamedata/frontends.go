package gamedata

// FrontendArcGIS - имя фронтенда карты на базе ArcGIS.
const FrontendArcGIS = "arcgis"

// Frontend описывает фронтенд карты: схему frontendInfo и собственные действия.
type Frontend struct {
	Name    string
	Info    []Field
	Actions []ActionSchema
}

var arcgisBasemaps = []string{
	"streets", "satellite", "hybrid", "topo", "gray", "dark-gray",
	"oceans", "national-geographic", "terrain", "osm",
}

// Frontends - известные фронтенды.
var Frontends = []Frontend{
	{
		Name: FrontendArcGIS,
		Info: []Field{
			{Name: "basemap", Kind: FieldDropdown, Options: arcgisBasemaps},
			{Name: "zoomSlider", Kind: FieldBoolean, Default: true},
		},
		Actions: []ActionSchema{
			{Name: "drawPoint", Frontend: FrontendArcGIS, Params: []Field{
				{Name: "points", Kind: FieldPointList},
				{Name: "color", Kind: FieldColor},
				{Name: "size", Kind: FieldNumber, Default: float64(8)},
			}},
			{Name: "drawLine", Frontend: FrontendArcGIS, Params: []Field{
				{Name: "points", Kind: FieldPointList},
				{Name: "color", Kind: FieldColor},
				{Name: "width", Kind: FieldNumber, Default: float64(2)},
			}},
			{Name: "drawPolygon", Frontend: FrontendArcGIS, Params: []Field{
				{Name: "points", Kind: FieldPointList},
				{Name: "lineColor", Kind: FieldColor},
				{Name: "fillColor", Kind: FieldColor},
			}},
			{Name: "clearMap", Frontend: FrontendArcGIS},
			{Name: "setBasemap", Frontend: FrontendArcGIS, Params: []Field{
				{Name: "basemap", Kind: FieldDropdown, Options: arcgisBasemaps},
			}},
		},
	},
}

// LookupFrontend ищет фронтенд по имени.
func LookupFrontend(name string) (Frontend, bool) {
	for _, fe := range Frontends {
		if fe.Name == name {
			return fe, true
		}
	}
	return Frontend{}, false
}

// checkFrontendInfo заполняет известные свойства фронтенда значениями по
// умолчанию. Неизвестные фронтенды и свойства сохраняются как есть.
func checkFrontendInfo(info map[string]map[string]any) {
	for name, props := range info {
		if props == nil {
			props = map[string]any{}
			info[name] = props
		}
		fe, ok := LookupFrontend(name)
		if !ok {
			continue
		}
		for _, field := range fe.Info {
			if v, exists := props[field.Name]; exists {
				props[field.Name] = field.Coerce(v)
			} else {
				props[field.Name] = field.DefaultValue()
			}
		}
	}
}
