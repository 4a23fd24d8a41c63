// Package document reads and writes ontology documents.
//
// A document is a YAML file listing classes, object properties and axioms:
//
//	classes: [Finger, Hand, Arm]
//	roles: [partOf]
//	axioms:
//	  - transitive: partOf
//	  - subClassOf: {sub: Finger, super: {some: {role: partOf, filler: Hand}}}
//	  - equivalentClasses: [ArmPart, {some: {role: partOf, filler: Arm}}]
//	  - subPropertyOf: {chain: [partOf, partOf], super: partOf}
//	  - domain: {role: partOf, class: Part}
//	changing:
//	  - subClassOf: {sub: Hand, super: {some: {role: partOf, filler: Arm}}}
//
// Class expressions are a class name, {and: [...]} or {some: {role, filler}}.
// Axioms under changing are meant to be asserted through the reasoner's
// incremental interface. Constructs outside EL++ such as range or inverse
// roles are rejected with ontology.ErrUnsupportedConstruct.
//
// Files ending in .zst or .lz4 are transparently decompressed. Patterns passed
// to Glob may use ** to match across directories.
package document
