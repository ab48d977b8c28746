package modes

const MaxDisplayIndex = 4

// DisplayIndex is the battery LED pattern position shared by the test modes.
// It cycles through 0..MaxDisplayIndex.
type DisplayIndex struct {
	value int
}

func (d *DisplayIndex) Value() int {
	return d.value
}

func (d *DisplayIndex) Next() int {
	d.value++
	if d.value > MaxDisplayIndex {
		d.value = 0
	}
	return d.value
}

func (d *DisplayIndex) Prev() int {
	if d.value == 0 {
		d.value = MaxDisplayIndex
	} else {
		d.value--
	}
	return d.value
}
