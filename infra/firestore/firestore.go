package firestore

import (
	"github.com/pulumi/pulumi-gcp/sdk/v9/go/gcp/firestore"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/GregMSThompson/finance-widgets/infra/platform"
)

// Setup creates the default database and the composite indexes the widget
// store and bank sync query with.
func Setup(ctx *pulumi.Context, p *platform.Platform) (*firestore.Database, error) {
	db, err := firestore.NewDatabase(ctx, "firestoreDatabase", &firestore.DatabaseArgs{
		Name:       pulumi.String("(default)"),
		Project:    pulumi.String(p.ProjectID),
		LocationId: pulumi.String(p.Region),
		Type:       pulumi.String("FIRESTORE_NATIVE"),
	},
		pulumi.Provider(p.Provider),
		p.DependsOn("firestore"),
	)
	if err != nil {
		return nil, err
	}

	indexes := []struct {
		name       string
		collection string
		fields     [][2]string
	}{
		// range queries on date with an optional category or account filter
		{"txCategoryDate", "transactions", [][2]string{{"category", "ASCENDING"}, {"date", "DESCENDING"}}},
		{"txAccountDate", "transactions", [][2]string{{"accountId", "ASCENDING"}, {"date", "DESCENDING"}}},
		{"txBankDate", "transactions", [][2]string{{"bankId", "ASCENDING"}, {"date", "DESCENDING"}}},
	}
	for _, ix := range indexes {
		var fields firestore.IndexFieldArray
		for _, f := range ix.fields {
			fields = append(fields, &firestore.IndexFieldArgs{
				FieldPath: pulumi.String(f[0]),
				Order:     pulumi.String(f[1]),
			})
		}
		_, err := firestore.NewIndex(ctx, ix.name, &firestore.IndexArgs{
			Project:    pulumi.String(p.ProjectID),
			Database:   db.Name,
			Collection: pulumi.String(ix.collection),
			QueryScope: pulumi.String("COLLECTION"),
			Fields:     fields,
		}, pulumi.Provider(p.Provider))
		if err != nil {
			return nil, err
		}
	}
	return db, nil
}
