/*
Package halfsquare composes one or two images into a half-square triangle, the quilting
block made of two right triangles cut diagonally from a square.

Each input is cropped to a size×size square anchored at its top-left corner and cut along
the diagonal with a black and white mask: the first input keeps the upper-left triangle,
the second one the lower-right. With a single input the second triangle is left fully
transparent.

The package provides a command line utility. Check the supported flags by typing:

	$ halfsquare --help

Example to compose two images from Go:

	package main

	import (
		"context"
		"log"

		"github.com/esimov/halfsquare"
	)

	func main() {
		req, err := halfsquare.NewRequest(
			[]string{"a.png", "b.png"},
			halfsquare.WithOutput("block.png"),
			halfsquare.WithSize(200),
		)
		if err != nil {
			log.Fatal(err)
		}

		p := &halfsquare.Processor{}
		if _, err := p.Process(context.Background(), req); err != nil {
			log.Fatalf("Error generating the block: %v", err)
		}
	}

In debug mode the intermediate files go to a persistent workspace (./tmp by default) so
the mask and buffer are reused by later runs of the same size. The crop-* and triangle-*
files of every run are kept there as well for inspection; nothing removes them, so clear
the directory once they are no longer needed.

The raster primitives are behind the ImageOps interface and the reusable mask and buffer
artifacts behind CacheStore, so both can be swapped without touching the pipeline.
*/
package halfsquare
