package normalize

import (
	"regexp"
	"strings"

	"github.com/banksync-dev/banksync/internal/model"
)

var (
	// refNoise matches source bookkeeping prefixes carrying no meaning
	// for the user ("POS", card terminal markers, asterisk references).
	refNoise = regexp.MustCompile(`^(POS|ATM|CT|DD|SO)\s+`)
	spaceRun = regexp.MustCompile(`\s{2,}`)
)

// DescriptionTransformer produces the processed description: the original
// minus the embedded dd/mm date token and channel prefixes, with
// whitespace collapsed. The original text is kept untouched.
type DescriptionTransformer struct{}

// Transform returns a copy of txn with DescriptionProcessed set.
func (DescriptionTransformer) Transform(txn model.Transaction) model.Transaction {
	txn.DescriptionProcessed = CleanDescription(txn.DescriptionOriginal)
	return txn
}

// CleanDescription strips source noise from a raw description.
func CleanDescription(desc string) string {
	out := datePattern.ReplaceAllString(desc, "")
	out = refNoise.ReplaceAllString(out, "")
	out = strings.ReplaceAll(out, "*", " ")
	out = spaceRun.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
