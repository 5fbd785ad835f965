package tracelib_test

import (
	"testing"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeCode(t *testing.T) {
	testData := map[string]string{
		"sto": "arn",
		"STO": "arn",
		"lon": "lhr",
		"nyc": "jfk",
		"par": "cdg",
		"tyo": "nrt",
		"chi": "ord",
		"was": "iad",
		"mil": "mxp",
		"rom": "fco",
		"mow": "svo",
		"bjs": "pek",
		"sel": "icn",
		"yto": "yyz",
		"sao": "gru",
		"rio": "gig",
		"osa": "kix",
		"fra": "fra",
		"AMS": "ams",
	}

	for k, v := range testData {
		assert.Equal(t, v, tracelib.NormalizeCode(k), k)
	}
}
