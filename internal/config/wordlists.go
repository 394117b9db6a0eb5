package config

// DefaultNotableTerms returns the watch vocabulary scanned by the rarity
// rule. Multi-word entries are matched as contiguous tokens.
func DefaultNotableTerms() []string {
	return []string{
		// Mathematics
		"Bayesian", "Markov", "Fibonacci", "golden ratio", "Riemann", "zeta",
		"Monte Carlo", "topology", "linear algebra", "elliptic curve", "Fourier",
		"Laplace", "Bessel", "gamma function", "beta function", "factorial",
		"binomial", "Poisson", "Gaussian", "chi squared", "logarithm",
		"trigonometry", "differential equation", "Taylor series", "continued fraction",
		"quaternion", "complex analysis", "number theory", "graph theory",
		"combinatorics", "paradox", "infinity", "holomorphic", "meromorphic",
		"Lebesgue", "Hilbert space", "Banach space", "manifold", "Hessian",
		"Jacobian", "eigenvalue", "determinant", "Cholesky", "Chebyshev",
		"Legendre", "Laguerre", "quadrature", "Runge Kutta", "Galerkin",
		"Navier Stokes", "turbulence", "Lorenz", "bifurcation", "Mandelbrot",
		"Julia set", "Brownian motion", "martingale", "bootstrap", "Wilcoxon",
		"Kruskal", "Spearman", "Kendall", "Metropolis", "Gibbs",

		// Computing
		"Python", "Mathematica", "Fortran", "Haskell", "LaTeX", "PowerShell",
		"Unix", "Linux", "regex", "Unicode", "Huffman", "Hamming", "Shannon",
		"Dijkstra", "quicksort", "memoization", "Paxos", "Kubernetes",

		// Cryptography and privacy
		"cryptography", "Bitcoin", "Monero", "Diffie Hellman", "RSA", "HIPAA",
		"GDPR", "CCPA", "anonymization",

		// People
		"Euler", "Gauss", "Ramanujan", "Knuth", "Feynman", "Noether",
		"Kolmogorov", "Turing", "Hardy", "Littlewood",
	}
}

// DefaultQuirkyTerms returns everyday words whose rare appearance in a
// technical corpus makes for a fun fact.
func DefaultQuirkyTerms() []string {
	return []string{
		"pickle", "pancake", "pizza", "coffee", "beer", "wine",
		"puzzle", "magic", "elegant", "disaster", "glitch",
		"cat", "dog", "rabbit", "turtle", "frog",
		"banana", "strawberry", "cherry",
		"sunrise", "sunset", "midnight",
		"mountain", "river", "ocean", "desert", "island",
		"Houston", "Austin", "NASA", "rocket", "satellite",
		"chess", "poker", "sudoku", "crossword", "wordle",
		"golf", "tennis", "baseball",
		"piano", "guitar", "violin", "trumpet",
		"Bach", "Mozart", "Beethoven", "Chopin",
		"Shakespeare", "Dickens", "Austen", "Tolkien", "Dostoevsky",
		"zigzag", "palindrome", "anagram", "syzygy", "zephyr", "xylophone",
	}
}

// DefaultFirstLastTerms returns the vocabulary for first and last
// mention facts.
func DefaultFirstLastTerms() []string {
	return []string{
		"Bayesian", "machine learning", "Python", "crypto", "Bitcoin", "Monero",
		"HIPAA", "GDPR", "Fibonacci", "Riemann", "elliptic curve", "neural network",
		"PowerShell", "Unicode", "RSA", "blockchain", "quantum", "deep learning",
		"transformer", "LLM", "ChatGPT", "Docker", "Kubernetes", "COVID",
		"pandemic", "vaccine", "clinical trial", "privacy", "anonymization",
		"Fourier", "Laplace", "Bessel", "gamma function", "zeta function",
		"Monte Carlo", "MCMC", "SVD", "eigenvalue", "tensor", "regex", "LaTeX",
		"Markdown", "JavaScript", "consulting", "Haskell", "Fortran", "Rust",
		"Julia", "Mathematica", "entropy",
	}
}

// DefaultSymbols returns the symbol names carried on post records.
func DefaultSymbols() []string {
	return []string{"pi", "phi", "Phi", "infty"}
}

// SymbolGlyphs maps symbol names to their printed form.
func SymbolGlyphs() map[string]string {
	return map[string]string{
		"pi":    "π",
		"phi":   "φ",
		"Phi":   "Φ",
		"infty": "∞",
	}
}

// DefaultMilestones returns the sequence positions reported as milestone posts.
func DefaultMilestones() []int {
	return []int{1, 10, 50, 100, 200, 300, 400, 500, 750, 1000, 1500, 2000, 2500, 3000, 3500, 4000, 4500, 5000}
}

// DefaultRarityKeywords returns the anchors that mark a rarity fact as
// being about language rather than an arbitrary token.
func DefaultRarityKeywords() []string {
	return []string{
		"word", "letter", "english", "dictionary", "language", "sentence",
		"phrase", "text", "book", "title", "name", "palindrome", "poem",
		"pangram", "lipogram",
	}
}

// DefaultStopwords returns the tokens ignored by the corpus rare-word scan.
func DefaultStopwords() []string {
	return []string{
		"the", "and", "for", "that", "with", "this", "from", "have", "your",
		"about", "into", "when", "what", "where", "why", "which", "will",
		"would", "could", "should", "there", "their", "they", "them", "then",
		"than", "just", "also", "some", "most", "more", "very", "been",
		"because", "while", "using", "use", "used", "much", "many", "other",
		"only", "like", "over", "under", "between", "within", "without",
		"after", "before", "around", "across", "through", "every", "each",
		"does", "done", "may", "might", "must",
	}
}

// SpecialDate names a calendar day worth calling out.
type SpecialDate struct {
	Month  int    `yaml:"month"`
	Day    int    `yaml:"day"`
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

// DefaultSpecialDates returns the named days used by the on-this-day rule.
func DefaultSpecialDates() []SpecialDate {
	return []SpecialDate{
		{3, 14, "Pi Day", "π ≈ 3.14"},
		{2, 7, "e Day", "e ≈ 2.7"},
		{6, 28, "Tau Day", "τ = 2π ≈ 6.28"},
		{10, 23, "Mole Day", "Avogadro's number 6.02×10²³"},
		{3, 4, "Grammar Day", "March forth!"},
		{5, 4, "Star Wars Day", "May the Fourth"},
		{9, 2, "Calendar Reform Day", "Sept 2, 1752"},
		{4, 1, "April Fools' Day", "mathematical jokes"},
		{11, 23, "Fibonacci Day", "1-1-2-3"},
		{1, 1, "New Year's Day", "new beginnings"},
		{7, 4, "Independence Day", "US holiday"},
		{12, 25, "Christmas Day", "holiday"},
		{10, 31, "Halloween", "spooky math"},
		{2, 14, "Valentine's Day", "love and math"},
		{3, 17, "St. Patrick's Day", "green"},
		{7, 22, "Pi Approximation Day", "22/7 ≈ π"},
		{2, 29, "Leap Day", "rare date"},
		{11, 11, "Veterans Day", "11/11"},
		{12, 31, "New Year's Eve", "end of year"},
	}
}
