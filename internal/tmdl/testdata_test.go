package tmdl

// Fixtures shared by the package tests. Indentation uses tabs like the
// files written by the modeling tool.

const salesTable = `table Sales
	lineageTag: 6f0c1d4e-0001

	column OrderID
		dataType: int64
		formatString: 0
		lineageTag: 6f0c1d4e-0002
		summarizeBy: none
		sourceColumn: OrderID

		annotation SummarizationSetBy = Automatic

	column OrderDate
		dataType: dateTime
		formatString: General Date
		lineageTag: 6f0c1d4e-0003
		summarizeBy: none
		sourceColumn: OrderDate

		variation Variation
			isDefault
			relationship: 2c5e-rel
			defaultHierarchy: LocalDateTable_1.'Date Hierarchy'

		annotation SummarizationSetBy = Automatic

	column 'Net Amount'
		dataType: decimal
		lineageTag: 6f0c1d4e-0004
		sourceColumn: Net Amount

	measure 'Total Sales' = SUM(Sales[Net Amount])
		formatString: #,0.00
		lineageTag: 6f0c1d4e-0005

	measure Orders =
			COUNTROWS ( Sales )
		lineageTag: 6f0c1d4e-0006

	partition Sales = m
		mode: import
		source =
				let
				    Source = Sql.Database("srv", "db")
				in
				    Source

	annotation PBI_ResultType = Table
`

const customerTable = `table Customer
	lineageTag: aa11

	column CustomerID
		dataType: int64
		lineageTag: aa12
		sourceColumn: CustomerID

	column Name
		dataType: string
		lineageTag: aa13
		sourceColumn: Name

	partition Customer = m
		mode: import
		source = #"Customer Source"
`

// corpus feeds the property style tests.
var corpus = []string{
	"",
	"\n\n",
	salesTable,
	customerTable,
	"table Empty\n",
	"column A\ncolumn B\ncolumn A\n",
	"measure X =\nmeasure Y\nmeasure 'Z' = 1\n",
	"\tcolumn 'Broken\n\tcolumn Good\n\t\tlineageTag: 1\n",
	"measure = 1\ncolumn\npartition\n",
	"table T\n\tpartition P = m\n\tcolumn Late\n\tmeasure LateM = 1\n",
	"table T\r\n\tcolumn A\r\n\t\tdataType: string\r\n",
	"table 'Date Table'\n\tcolumn Date\n\t\tvariation V\n\t\t\tisDefault\n\tmeasure 'a''b' = 2\n",
}
