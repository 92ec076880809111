package param

// peqTable mirrors the peaking equalizer's descriptor table.
func peqTable() *Table {
	return MustTable(
		New(0, "centerFrequency").Range(12, 20000).Default(1000).Unit("Hz").Build(),
		New(1, "gain").Range(0, 10).Default(1.0).Build(),
		New(2, "q").Range(0, 2).Default(0.707).Build(),
	)
}
