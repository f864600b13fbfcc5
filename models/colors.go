package models

// FiberColors is the fixed twelve-color code shared by tubes and cores,
// in standard position order (position 1 is blue).
var FiberColors = []string{
	"blue",
	"orange",
	"green",
	"brown",
	"slate",
	"white",
	"red",
	"black",
	"yellow",
	"violet",
	"rose",
	"aqua",
}

// SplitterRatios are the supported splitter configurations.
var SplitterRatios = []string{"1:2", "1:4", "1:8", "1:16", "1:32", "1:64", "1:128"}

// CableTypes are the supported cable constructions.
var CableTypes = []string{CableSingleCore, CableMultiCore}

const (
	CableSingleCore = "singlecore"
	CableMultiCore  = "multicore"
)

// IsFiberColor reports whether c is one of the twelve fiber colors.
func IsFiberColor(c string) bool {
	return contains(FiberColors, c)
}

// IsSplitterRatio reports whether r is a supported splitter ratio.
func IsSplitterRatio(r string) bool {
	return contains(SplitterRatios, r)
}

// FiberColorPosition returns the 1-based position of a color, or 0 if unknown.
func FiberColorPosition(c string) int {
	for i, v := range FiberColors {
		if v == c {
			return i + 1
		}
	}
	return 0
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
