package layout

// Clamp 修正片段起始横坐标，使 x+width 不超过 maxTextX。
// 返回修正后的横坐标，以及修正后是否仍然越界（片段比可用区域更宽）。
// 返回值永远不为负。
func Clamp(x, width, maxTextX, leftMargin int, mode OverflowMode) (int, bool) {
	if x < 0 {
		x = 0
	}
	if x+width <= maxTextX {
		return x, false
	}
	switch mode {
	case RightAlign:
		x = maxTextX - width
	default:
		x = leftMargin
	}
	if x < 0 {
		x = 0
	}
	return x, x+width > maxTextX
}
