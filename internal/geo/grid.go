package geo

// Grid2D is a row-major 2-D float32 array with explicit dimensions,
// used for the (lat, lon) slab the image renderer works with.
type Grid2D struct {
	Data   []float32
	Height int
	Width  int
}

func NewGrid2D(height, width int) Grid2D {
	return Grid2D{Data: make([]float32, height*width), Height: height, Width: width}
}

func (g Grid2D) At(row, col int) float32 {
	return g.Data[row*g.Width+col]
}

func (g Grid2D) Set(row, col int, v float32) {
	g.Data[row*g.Width+col] = v
}

// AdjustForDateline replicates the columns east of the seam to the right
// of the grid with lon+360, so a bbox straddling ±180° can be sliced as
// one contiguous range. Bounds-checked and a no-op on an empty grid.
func AdjustForDateline(grid Grid2D, lonCoords []float64) (Grid2D, []float64) {
	if len(lonCoords) == 0 || len(grid.Data) == 0 {
		return grid, lonCoords
	}

	var datelineIdx int
	found := false
	if lonCoords[0] <= lonCoords[len(lonCoords)-1] {
		for i, lon := range lonCoords {
			if lon >= 0 && lon <= 180 {
				datelineIdx = i
				found = true
				break
			}
		}
	} else {
		for i, lon := range lonCoords {
			if lon >= -180 && lon <= 0 {
				datelineIdx = i
				found = true
				break
			}
		}
	}
	if !found {
		datelineIdx = 0
	}

	rightSize := len(lonCoords) - datelineIdx
	if rightSize < 0 {
		rightSize = 0
	}
	if rightSize > grid.Width {
		rightSize = grid.Width
	}
	if rightSize == 0 {
		return grid, lonCoords
	}

	newGrid := NewGrid2D(grid.Height, grid.Width+rightSize)
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < grid.Width; col++ {
			newGrid.Set(row, col, grid.At(row, col))
		}
	}

	origStart := grid.Width - rightSize
	for row := 0; row < grid.Height; row++ {
		for col := 0; col < rightSize; col++ {
			newGrid.Set(row, grid.Width+col, grid.At(row, origStart+col))
		}
	}

	newLon := make([]float64, 0, len(lonCoords)+rightSize)
	newLon = append(newLon, lonCoords...)
	for i := 0; i < rightSize; i++ {
		newLon = append(newLon, lonCoords[origStart+i]+360)
	}

	return newGrid, newLon
}

// Resample performs bilinear resizing of a 2-D grid to (targetWidth,
// targetHeight).
func Resample(grid Grid2D, targetWidth, targetHeight int) Grid2D {
	if grid.Height == 0 || grid.Width == 0 {
		return Grid2D{}
	}
	out := NewGrid2D(targetHeight, targetWidth)
	if targetWidth == 0 || targetHeight == 0 {
		return out
	}

	for y := 0; y < targetHeight; y++ {
		srcY := scaledCoord(y, targetHeight, grid.Height)
		y0 := int(srcY)
		if y0 > grid.Height-1 {
			y0 = grid.Height - 1
		}
		y1 := y0 + 1
		if y1 > grid.Height-1 {
			y1 = grid.Height - 1
		}
		wy := srcY - float64(y0)

		for x := 0; x < targetWidth; x++ {
			srcX := scaledCoord(x, targetWidth, grid.Width)
			x0 := int(srcX)
			if x0 > grid.Width-1 {
				x0 = grid.Width - 1
			}
			x1 := x0 + 1
			if x1 > grid.Width-1 {
				x1 = grid.Width - 1
			}
			wx := srcX - float64(x0)

			top := float64(grid.At(y0, x0))*(1-wx) + float64(grid.At(y0, x1))*wx
			bottom := float64(grid.At(y1, x0))*(1-wx) + float64(grid.At(y1, x1))*wx
			out.Set(y, x, float32(top*(1-wy)+bottom*wy))
		}
	}

	return out
}

func scaledCoord(i, targetN, srcN int) float64 {
	if targetN <= 1 {
		return 0
	}
	return float64(i) * float64(srcN-1) / float64(targetN-1)
}
