// Package score derives feature vectors from packages and scores how
// compatible two packages are.
//
// [Extract] maps a [graph.Package] to a fixed-length vector of [Dimensions]
// values. Every component is an explicit function of the package's own
// metadata, so the same package always produces the same vector:
//
//	index  feature
//	0      name length
//	1      character-sum hash of the name, mod 1000, scaled to [0,1)
//	2      count of '-' and '_' separators in the name
//	3      number of version components
//	4      numeric major version
//	5      dependency count
//	6      metadata entry count
//	7      1 if the metadata names an author
//	8      1 if a license is known
//	9-13   one-hot application type: web, database, ai, general, microservice
//	14-15  zero padding
//
// [Score] compares two vectors with cosine similarity clamped to [0,1].
// It is symmetric, and returns [Neutral] when either vector is all zeros.
//
// A [Scorer] memoises pair scores over one graph and is safe for concurrent
// use.
package score
