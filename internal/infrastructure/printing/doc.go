// Package printing renders invoice documents to PDF.
//
// An invoice is first rendered to a self-contained HTML page by
// InvoiceTemplate, then printed by headless Chrome through chromedp:
//
//	r, err := NewChromedpRenderer(&ChromedpConfig{
//	    DefaultTimeout: 30 * time.Second,
//	    Currency:       "KES",
//	    Locale:         "en-KE",
//	})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	pdf, err := r.RenderInvoice(ctx, doc)
package printing
