// Package queries exposes the sales rankings as a read-only GraphQL schema.
package queries

import (
	"context"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/ventas/app/repositories"
	gql "github.com/shashiranjanraj/ventas/pkg/graphql"
)

// ReportSource is the part of services.ReportService the schema needs.
type ReportSource interface {
	ParseLimit(raw string) (int, error)
	TopProducts(ctx context.Context, limit int) ([]repositories.ProductRanking, error)
	TopCustomers(ctx context.Context, limit int) ([]repositories.CustomerRanking, error)
}

var productRankingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductoMasVendido",
	Fields: graphql.Fields{
		"productoId": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return int(p.Source.(repositories.ProductRanking).ProductID), nil
			},
		},
		"nombre": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(repositories.ProductRanking).Name, nil
			},
		},
		"totalCantidad": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return int(p.Source.(repositories.ProductRanking).UnitsSold), nil
			},
		},
		"totalIngresos": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.String),
			Description: "Revenue as a decimal string with two places.",
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(repositories.ProductRanking).Revenue.StringFixed(2), nil
			},
		},
	},
})

var customerRankingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ClienteConMasVentas",
	Fields: graphql.Fields{
		"clienteId": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return int(p.Source.(repositories.CustomerRanking).CustomerID), nil
			},
		},
		"nombre": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(repositories.CustomerRanking).Name, nil
			},
		},
		"totalVentas": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return int(p.Source.(repositories.CustomerRanking).SaleCount), nil
			},
		},
		"totalMonto": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(repositories.CustomerRanking).Revenue.StringFixed(2), nil
			},
		},
	},
})

// NewReportsSchema builds:
//
//	type Query {
//	  topProducts(limit: Int): [ProductoMasVendido!]!
//	  topCustomers(limit: Int): [ClienteConMasVentas!]!
//	}
func NewReportsSchema(src ReportSource) (graphql.Schema, error) {
	limitArgs := graphql.FieldConfigArgument{
		"limit": &graphql.ArgumentConfig{Type: graphql.Int},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"topProducts": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productRankingType))),
				Args: limitArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, err := limitArg(src, p.Args)
					if err != nil {
						return nil, err
					}
					return src.TopProducts(p.Context, limit)
				},
			},
			"topCustomers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerRankingType))),
				Args: limitArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, err := limitArg(src, p.Args)
					if err != nil {
						return nil, err
					}
					return src.TopCustomers(p.Context, limit)
				},
			},
		},
	})

	return gql.NewSchema(query)
}

// limitArg applies the same rules as the ?limit= query parameter.
func limitArg(src ReportSource, args map[string]interface{}) (int, error) {
	n, ok := args["limit"].(int)
	if !ok {
		return src.ParseLimit("")
	}
	return src.ParseLimit(strconv.Itoa(n))
}
