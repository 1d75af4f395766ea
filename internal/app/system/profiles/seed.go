// internal/app/system/profiles/seed.go
package profiles

import "github.com/dalemusser/pastoralhub/internal/domain/models"

func geo(lat, lng float64) *models.GeoPoint { return &models.GeoPoint{Lat: lat, Lng: lng} }

// SeedCommunities is the fixed community set every deployment starts with.
var SeedCommunities = []models.Community{
	{ID: models.CoordinationCommunityID, Name: "Coordenação", Address: "Santuário"},
	{ID: "ns_auxiliadora", Name: "Nossa Senhora Auxiliadora", Address: "Comunidade", Geo: geo(-23.1238, -46.92922)},
	{ID: "ns_gracas", Name: "Nossa Senhora das Graças", Address: "Comunidade", Geo: geo(-23.1075, -46.91839)},
	{ID: "ns_guadalupe", Name: "Nossa Senhora de Guadalupe", Address: "Comunidade", Geo: geo(-23.137, -46.928)},
	{ID: "sta_brigida", Name: "Santa Brígida", Address: "Comunidade", Geo: geo(-23.124, -46.935)},
	{ID: "sta_luzia", Name: "Santa Luzia", Address: "Comunidade", Geo: geo(-23.13853, -46.916)},
	{ID: "matriz", Name: "Santa Rita", Address: "Santuário Diocesano", Geo: geo(-23.14382, -46.91974)},
	{ID: "sao_francisco", Name: "São Francisco", Address: "Comunidade", Geo: geo(-23.13167, -46.94706)},
	{ID: "sao_jose", Name: "São José", Address: "Comunidade", Geo: geo(-23.10491, -46.90396)},
}
