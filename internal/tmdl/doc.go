// Package tmdl reads the table files of a tabular model definition.
//
// A table file is indentation sensitive text made of a table header followed
// by column, measure and partition declarations:
//
//	table Sales
//		lineageTag: 0d2f...
//
//		column Amount
//			dataType: decimal
//			lineageTag: 9a1c...
//
//			variation Variation
//				isDefault
//				relationship: 4b7e...
//
//		measure 'Total Sales' = SUM(Sales[Amount])
//
//		partition Sales = m
//			mode: import
//			source = ...
//
// The package does not implement the full grammar. It recognizes declaration
// lines, slices the text into verbatim blocks and removes the transient parts
// (lineage tags and variations) that must not travel between models.
// Lines that do not match a declaration are never an error: the element is
// simply not reported.
package tmdl
