package geoprefix_test

import (
	"context"
	"fmt"
	"log"

	"github.com/golang/geo/r2"
	"github.com/hupe1980/geoprefix"
	"github.com/hupe1980/geoprefix/blobstore"
	"github.com/hupe1980/geoprefix/query"
	"github.com/hupe1980/geoprefix/shape"
	"github.com/hupe1980/geoprefix/termindex"
	"github.com/hupe1980/geoprefix/tree"
)

// Example demonstrates indexing shapes and searching them by relation.
func Example() {
	ctx := context.Background()
	ix, err := geoprefix.New(geoprefix.WithTree(tree.KindGeohash, tree.GeohashMaxLevels))
	if err != nil {
		log.Fatal(err)
	}
	defer ix.Close()

	p1, _ := shape.NewPoint(-30, -30)
	p2, _ := shape.NewPoint(-45, 50)
	rect, _ := shape.NewRectangle(-50, 38, -38, 50)

	_ = ix.Index(ctx, "a", p1)
	_ = ix.Index(ctx, "b", p2)
	_ = ix.Index(ctx, "c", rect)

	q, _ := shape.NewRectangle(-45, -45, 45, 45)
	for _, rel := range []geoprefix.Relation{geoprefix.Intersects, geoprefix.Disjoint, geoprefix.Contains} {
		ids, _ := ix.Search(ctx, rel, q)
		fmt.Println(rel, ids)
	}
	// Output:
	// intersects [a c]
	// disjoint [b]
	// contains [a]
}

// Example_tokens shows the cell tokens a point is indexed with.
func Example_tokens() {
	ix, _ := geoprefix.New(geoprefix.WithTree(tree.KindGeohash, 5))
	defer ix.Close()

	p, _ := shape.NewPoint(-5.6, 42.6)
	ts, _ := ix.Tokens(p)
	fmt.Println(ts.Values())
	// Output: [e ez ezs ezs4 ezs42]
}

// Example_compile prints the term query for a search without running it.
func Example_compile() {
	ix, _ := geoprefix.New(geoprefix.WithTree(tree.KindQuad, 4), geoprefix.WithField("loc"))
	defer ix.Close()

	poly, _ := shape.NewPolygon([]r2.Point{{X: -180, Y: -90}, {X: 0, Y: -90}, {X: 0, Y: 0}, {X: -180, Y: 0}})
	q, _ := ix.Compile(geoprefix.Intersects, poly)
	fmt.Println(query.Describe(q).Prefixes > 0)
	// Output: true
}

// Example_saveLoad demonstrates persisting an index to a blob store.
func Example_saveLoad() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	ix, _ := geoprefix.New(geoprefix.WithCompression(termindex.CompressionZstd))
	p, _ := shape.NewPoint(13.4, 52.5)
	_ = ix.Index(ctx, "berlin", p)
	if err := ix.Save(ctx, store, "cities.gpti"); err != nil {
		log.Fatal(err)
	}
	_ = ix.Close()

	loaded, err := geoprefix.Load(ctx, store, "cities.gpti")
	if err != nil {
		log.Fatal(err)
	}
	defer loaded.Close()

	fmt.Println(loaded.Len(), loaded.Settings().Field)
	// Output: 1 geo
}
