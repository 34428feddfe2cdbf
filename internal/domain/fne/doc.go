// Package fne holds the DGI FNE business rules that do not need storage:
// payment-method and VAT-code normalisation, billing-template inference and
// validation, and the HT/VAT/TTC arithmetic.
package fne
