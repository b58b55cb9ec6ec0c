// Copyright (c) 2024 the xsynth authors
//
// MIT License

/*
Package xsynth is the root of a library for synthesizing Boolean functions
onto nanoscale memristor crossbar arrays. It supports two in-memory computing
paradigms: flow-based computing, where a function is evaluated through
electrical flow continuity across a crossbar region, and path-based
computing, where evaluation is the existence of a single conducting path
between two designated nanowires.

The pipeline is split over subpackages, leaves first:

  - boolfunc: canonical in-memory model of a Boolean function (fixed,
    ordered input variables plus a semantic definition).
  - bdd: shared, ordered, reduced decision diagrams built from Boolean
    functions; multiple functions built under one ordering share structure.
  - xbar: the crossbar topology model targeted by synthesis.
  - ilp: 0/1 integer linear models and the solver capability boundary, with
    a gophersat-backed optimizer and a brute-force fallback.
  - synth: the COMPACT (flow-based) and PATH (path-based) synthesis
    algorithms.
  - verify: exact equivalence checking of a synthesized crossbar against
    its source function, by enumeration or by a SAT miter driven through
    the decision diagram.
  - fault: single-fault injection analysis over synthesized topologies.
  - workspace: an explicit, named workspace tying the operations together.

This root package only carries the error kinds shared by the pipeline.
*/
package xsynth
