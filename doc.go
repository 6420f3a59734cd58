/*
Package sdfatlas packs square icon tiles, typically multichannel signed distance
field renderings of vector icons, into a single square texture atlas and produces
a coordinate map describing where every tile landed.

The layout is a square grid of ceil(sqrt(n)) cells per side. Tiles are placed row by row
in the order they are supplied, with the padding applied both between the cells
and around the atlas border:

	width = height = side*tileSize + (side+1)*padding

The package provides a command line interface which renders a directory of SVG icons
and packs them into an atlas. To check the supported commands type:

	$ sdfatlas --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"

		"github.com/esimov/sdfatlas"
	)

	func main() {
		plan, err := sdfatlas.Plan(len(tiles), 64, 2)
		if err != nil {
			fmt.Printf("Error planning the atlas: %s", err.Error())
			return
		}
		atlas, err := sdfatlas.Compose(tiles, plan)
		if err != nil {
			fmt.Printf("Error composing the atlas: %s", err.Error())
			return
		}
		// atlas.Image holds the pixels, atlas.Map the tile coordinates.
	}
*/
package sdfatlas
