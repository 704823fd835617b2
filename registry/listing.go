package registry

import (
	"bufio"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"io"
	"strconv"
)

// ListingField is the field name under which [WriteListing] prints types.
const ListingField = "types"

// WriteListing prints types in the registry's listing format, one field entry per type:
//
//	BMessage(0x0) {
//	        types = string("entity/person", 14 bytes)
//	}
//
// The byte count includes the terminating NUL of the stored string.
func WriteListing(w io.Writer, types []mimetype.Type) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "BMessage(0x0) {")
	for _, t := range types {
		s := t.String()
		fmt.Fprintf(bw, "        %s = string(%s, %d bytes)\n", ListingField, strconv.Quote(s), len(s)+1)
	}
	fmt.Fprintln(bw, "}")

	return bw.Flush()
}
