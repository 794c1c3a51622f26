// Package analyze finds structural and semantic problems in a dependency
// graph.
//
// [DetectCycles] reports depends_on cycles with one witness path per
// starting package. [DetectConflicts] runs four independent passes over the
// graph (version, architecture, license and declared conflicts_with edges)
// and returns one [Conflict] per finding. [CycleConflicts] turns cycles into
// conflicts so that both kinds of finding can be weighed together.
//
// Findings are data, never errors: a graph full of cycles and conflicts is
// still a valid input for the search stage.
package analyze
