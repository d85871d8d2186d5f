package stock

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
)

// Tabla canónica de factores estándar por categoría. Es la única fuente de
// verdad para conversiones sin factor explícito: tanto la derivación de stock
// como la conciliación de ventas la consumen, no puede haber dos tablas
// divergentes. El factor multiplica hacia la unidad canónica de la categoría
// (peso: gramo, volumen: mililitro, longitud: milímetro).
var standardFactors = map[string]map[string]decimal.Decimal{
	entity.UnitCategoryWeight: {
		"g":  decimal.NewFromInt(1),
		"kg": decimal.NewFromInt(1000),
		"mg": decimal.RequireFromString("0.001"),
		"lb": decimal.RequireFromString("453.592"),
		"oz": decimal.RequireFromString("28.3495"),
	},
	entity.UnitCategoryVolume: {
		"ml": decimal.NewFromInt(1),
		"l":  decimal.NewFromInt(1000),
		"cl": decimal.NewFromInt(10),
		"dl": decimal.NewFromInt(100),
	},
	entity.UnitCategoryLength: {
		"mm": decimal.NewFromInt(1),
		"cm": decimal.NewFromInt(10),
		"m":  decimal.NewFromInt(1000),
		"km": decimal.NewFromInt(1000000),
	},
}

// StandardFactor devuelve el factor estándar de un símbolo dentro de una
// categoría. Símbolo desconocido en categoría conocida (o categoría sin tabla,
// como "other") devuelve 1: es el fallback documentado, no un error.
func StandardFactor(category, symbol string) decimal.Decimal {
	if table, ok := standardFactors[category]; ok {
		if f, ok := table[symbol]; ok {
			return f
		}
	}
	return decimal.NewFromInt(1)
}

// factorToCanonical resuelve el factor de una unidad hacia la canónica de su
// categoría: el factor explícito del catálogo si existe, la tabla estándar si no.
func factorToCanonical(u *entity.Unit) decimal.Decimal {
	if u.ConversionFactor != nil {
		return *u.ConversionFactor
	}
	return StandardFactor(u.Category, u.Symbol)
}
