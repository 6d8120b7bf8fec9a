// Package cytomine provides an embeddable Go client for a content-based image
// retrieval (CBIR) engine that indexes whole-slide images.
//
// The client validates caller input, builds the engine request, and normalizes
// the engine's answer. A search always returns a well-formed result: a 2xx answer
// that cannot be decoded is reported as an empty match list.
//
//	client, _ := cytomine.New("http://wsi-cbir:6001/api",
//	    cytomine.WithTimeout(30*time.Second),
//	)
//	res, err := client.Search(ctx, cytomine.SearchParams{
//	    K:        5,
//	    Query:    "/data/slides/query.svs",
//	    Datasets: []string{"tcga"},
//	    Organ:    "breast",
//	})
//	for _, m := range res.Similarities {
//	    fmt.Println(m.ID, m.Score)
//	}
//
// Index and Remove relay the engine's status and body unchanged:
//
//	reply, err := client.Index(ctx, cytomine.Image{ID: 42, Path: "/data/slides", Filename: "a.svs"})
package cytomine
