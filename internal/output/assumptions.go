package output

// DefaultNotes lists how the console breakdown was computed
var DefaultNotes = []string{
	"INSS: the bracket covering the whole gross applies to all of it, capped at the schedule ceiling",
	"IRPF: net = base x (1 - rate) + deduction, with the bracket covering the gross after contribution",
	"Figures from net or gross after contribution are recomputed from the gross rounded to cents",
}
