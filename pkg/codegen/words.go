package codegen

// frenchWords is the vocabulary used for subject codes. Entries are lowercase ASCII
// so a code can be typed on any keyboard.
var frenchWords = []string{
	"abeille", "arbre", "avion", "balcon", "bateau", "bougie", "branche", "brioche",
	"cabane", "caillou", "camion", "canard", "castor", "cerise", "chemin", "citron",
	"colline", "comete", "corbeau", "crayon", "dauphin", "domino", "etoile", "falaise",
	"faucon", "fenetre", "figue", "flocon", "fontaine", "fougere", "fromage", "fusee",
	"galet", "girafe", "glacier", "grenier", "hibou", "horloge", "jardin", "jasmin",
	"lagune", "lanterne", "lavande", "lezard", "licorne", "lumiere", "marmotte", "marron",
	"mouette", "muguet", "nuage", "olive", "orange", "ourson", "papillon", "pelican",
	"pinceau", "planete", "plume", "pomme", "prairie", "renard", "riviere", "rocher",
	"sapin", "sardine", "silence", "soleil", "sommet", "tambour", "tigre", "tortue",
	"tulipe", "vallee", "violon", "voilier", "volcan", "zebre",
}
