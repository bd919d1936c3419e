package evaluator

// enumerate walks the Cartesian product of [0,lengths[0]) x ... x
// [0,lengths[n-1]) in lexicographic order — the last index advances
// fastest, matching "lexicographic over (index in e1, index in e2, ...)"
// (§4.7) when lengths is ordered e1..ek by first occurrence. It calls
// visit for each tuple and stops as soon as visit reports true (found).
func enumerate(lengths []int, visit func(indices []int) (stop bool)) {
	for _, n := range lengths {
		if n == 0 {
			return
		}
	}
	if len(lengths) == 0 {
		visit(nil)
		return
	}

	indices := make([]int, len(lengths))
	for {
		if visit(indices) {
			return
		}
		i := len(indices) - 1
		for i >= 0 {
			indices[i]++
			if indices[i] < lengths[i] {
				break
			}
			indices[i] = 0
			i--
		}
		if i < 0 {
			return
		}
	}
}
