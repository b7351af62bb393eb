package viewstate

const (
	// MinPanelWidth is the narrowest a pane may get, in columns.
	MinPanelWidth = 20
	// fitTolerance is how far the panel total may drift from the container
	// before Fit rescales.
	fitTolerance = 10
)

type PanelSizes struct {
	Left   int `json:"left"`
	Middle int `json:"middle"`
	Right  int `json:"right"`
}

func (p PanelSizes) Total() int {
	return p.Left + p.Middle + p.Right
}

// ResizeLeft moves the left divider by delta columns from the sizes at drag
// start. The middle and right panes share what remains in their prior ratio.
func ResizeLeft(start PanelSizes, container, delta, minWidth int) PanelSizes {
	if container < 3*minWidth {
		return Even(container)
	}
	left := clamp(start.Left+delta, minWidth, container-2*minWidth)
	remaining := container - left

	pair := start.Middle + start.Right
	middle := remaining / 2
	if pair > 0 {
		middle = remaining * start.Middle / pair
	}
	middle = max(middle, minWidth)
	right := remaining - middle
	if right < minWidth {
		right = minWidth
		middle = remaining - minWidth
	}
	return PanelSizes{Left: left, Middle: middle, Right: right}
}

// ResizeRight moves the right divider by delta columns. The left pane keeps
// its width.
func ResizeRight(start PanelSizes, container, delta, minWidth int) PanelSizes {
	if container < 3*minWidth {
		return Even(container)
	}
	left := clamp(start.Left, minWidth, container-2*minWidth)
	middle := clamp(start.Middle+delta, minWidth, container-left-minWidth)
	return PanelSizes{Left: left, Middle: middle, Right: container - left - middle}
}

// Fit rescales sizes proportionally when their total is more than a few
// columns off the container width, as after a terminal resize.
func Fit(sizes PanelSizes, container, minWidth int) PanelSizes {
	total := sizes.Total()
	if abs(total-container) <= fitTolerance {
		return sizes
	}
	if total <= 0 || container < 3*minWidth {
		return Even(container)
	}

	left := max(minWidth, container*sizes.Left/total)
	middle := max(minWidth, container*sizes.Middle/total)
	right := container - left - middle
	if right < minWidth {
		deficit := minWidth - right
		right = minWidth
		// Take the shortfall from the wider of the other two first.
		for deficit > 0 {
			if middle >= left && middle > minWidth {
				middle--
			} else if left > minWidth {
				left--
			} else {
				break
			}
			deficit--
		}
	}
	return PanelSizes{Left: left, Middle: middle, Right: right}
}

// Even splits container into three near-equal panes.
func Even(container int) PanelSizes {
	third := container / 3
	return PanelSizes{Left: third, Middle: third, Right: container - 2*third}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
