package testng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorFindsTypesWithTestMethods(t *testing.T) {
	dir := installTestNG(t, map[string]string{
		"orders/orders.go": `package orders

type OrderTests struct{}

func (o *OrderTests) TestCreate() {}

type Helper struct{}

func (h Helper) Testimony() {}

func (h Helper) testHidden() {}

type Plain struct{}
`,
		"billing/billing.go": `package billing

type InvoiceTests struct{}

func (i InvoiceTests) Test() {}
`,
	})[0]

	found, err := NewDetector(nil).Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing.InvoiceTests", "orders.OrderTests"}, found)
}

func TestDetectorMissingDirectory(t *testing.T) {
	found, err := NewDetector(nil).Detect("/does/not/exist")
	require.NoError(t, err)
	assert.Empty(t, found)
}
