package viewer

// camera maps simulation coordinates onto the window.
type camera struct {
	zoom float64
	x, y float64
}

func (c camera) toScreen(wx, wy float64) (float64, float64) {
	return (wx - c.x) * c.zoom, (wy - c.y) * c.zoom
}

func (c camera) visible(sx, sy, w, h, margin float64) bool {
	return sx >= -margin && sx <= w+margin && sy >= -margin && sy <= h+margin
}

func (c *camera) zoomBy(delta float64) {
	c.zoom += delta
	if c.zoom < MinZoom {
		c.zoom = MinZoom
	}
	if c.zoom > MaxZoom {
		c.zoom = MaxZoom
	}
}

// pan drags the view by a screen-space mouse delta.
func (c *camera) pan(dx, dy float64) {
	c.x -= dx / c.zoom
	c.y -= dy / c.zoom
}
